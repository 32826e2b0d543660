package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// PrintSummary writes the console run summary, and the folder census when one
// was collected, as rounded tables.
func PrintSummary(out io.Writer, rep *Report, reportPath string) error {
	rows := [][]string{
		{"Mode", rep.Mode},
		{"Root", rep.Root},
		{"Files scanned", strconv.Itoa(rep.Metrics.FilesScanned)},
		{"Files fingerprinted", strconv.Itoa(rep.Metrics.FilesFingerprinted)},
	}
	if rep.Metrics.SkippedUniqueSize > 0 {
		rows = append(rows, []string{"Skipped (unique size)", strconv.Itoa(rep.Metrics.SkippedUniqueSize)})
	}
	if rep.Metrics.SingleCategoryBuckets > 0 {
		rows = append(rows, []string{"Single-format buckets", strconv.Itoa(rep.Metrics.SingleCategoryBuckets)})
	}
	rows = append(rows,
		[]string{"Duplicate groups", strconv.Itoa(rep.GroupCount)},
		[]string{"Diagnostics", strconv.Itoa(len(rep.Diagnostics))},
		[]string{"Status", string(rep.Status)},
	)
	if reportPath != "" {
		rows = append(rows, []string{"Report", reportPath})
	}
	if _, err := fmt.Fprintln(out, renderTable([]string{"Summary", ""}, rows, []text.Align{text.AlignLeft, text.AlignLeft})); err != nil {
		return err
	}
	if len(rep.Census) == 0 {
		return nil
	}
	census := make([][]string, 0, len(rep.Census))
	for _, fc := range rep.Census {
		census = append(census, []string{fc.Folder, strconv.Itoa(fc.Raw), strconv.Itoa(fc.JPEG)})
	}
	_, err := fmt.Fprintln(out, renderTable([]string{"Folder", "Raw", "JPEG"}, census, []text.Align{text.AlignLeft, text.AlignRight, text.AlignRight}))
	return err
}

func renderTable(headers []string, rows [][]string, aligns []text.Align) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) {
			align = aligns[i]
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
