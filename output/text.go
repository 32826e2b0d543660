package output

import (
	"fmt"
	"io"
	"strings"
)

func renderText(out io.Writer, rep *Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "photodup report (schema %s)\n", rep.SchemaVersion)
	fmt.Fprintf(&b, "Mode: %s (%s)\n", rep.Mode, rep.Description)
	fmt.Fprintf(&b, "Root: %s\n", rep.Root)
	if rep.Algorithm != "" {
		verified := ""
		if rep.Verified {
			verified = ", verified byte for byte"
		}
		fmt.Fprintf(&b, "Hash: %s%s\n", rep.Algorithm, verified)
	}
	fmt.Fprintf(&b, "Started: %s\nFinished: %s\n", rep.Metrics.StartTime, rep.Metrics.EndTime)
	fmt.Fprintf(&b, "Files scanned: %d, fingerprinted: %d\n", rep.Metrics.FilesScanned, rep.Metrics.FilesFingerprinted)
	fmt.Fprintf(&b, "Duplicate groups: %d\n\n", rep.GroupCount)

	switch rep.Status {
	case StatusNoFilesScanned:
		b.WriteString("No files scanned.\n")
	case StatusNoDuplicates:
		b.WriteString("No duplicates found.\n")
	}

	for i, g := range rep.Groups {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, g.Key)
		if len(g.Raw) > 0 || len(g.JPEG) > 0 {
			writeTextPaths(&b, "raw", g.Raw)
			writeTextPaths(&b, "jpeg", g.JPEG)
		} else {
			for _, m := range g.Members {
				fmt.Fprintf(&b, "  - %s", m.Path)
				if m.HardLinkOf != "" {
					fmt.Fprintf(&b, " (hard link of %s)", m.HardLinkOf)
				}
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	if len(rep.Census) > 0 {
		b.WriteString("Folder census:\n")
		for _, fc := range rep.Census {
			fmt.Fprintf(&b, "  %s: raw=%d jpeg=%d\n", fc.Folder, fc.Raw, fc.JPEG)
		}
		b.WriteString("\n")
	}

	if len(rep.Diagnostics) > 0 {
		fmt.Fprintf(&b, "Diagnostics (%d):\n", len(rep.Diagnostics))
		for _, d := range rep.Diagnostics {
			if d.Message != "" {
				fmt.Fprintf(&b, "  %s %s: %s\n", d.Kind, d.Path, d.Message)
			} else {
				fmt.Fprintf(&b, "  %s %s\n", d.Kind, d.Path)
			}
		}
	}

	_, err := io.WriteString(out, b.String())
	return err
}

func writeTextPaths(b *strings.Builder, label string, paths []string) {
	fmt.Fprintf(b, "  %s (%d):\n", label, len(paths))
	for _, p := range paths {
		fmt.Fprintf(b, "    - %s\n", p)
	}
}
