package dedup

import "sort"

// Result is the outcome of fingerprinting one file.
type Result struct {
	Record      FileRecord
	Fingerprint Fingerprint
	Err         error
}

// Collect orders results by enumeration index and splits them into grouping
// entries and diagnostics. No error is dropped.
func Collect(results []Result) ([]Entry, []Diagnostic) {
	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Record.Index < sorted[j].Record.Index
	})

	entries := make([]Entry, 0, len(sorted))
	var diags []Diagnostic
	for _, r := range sorted {
		if r.Err != nil {
			diags = append(diags, DiagnosticFor(r.Record.Path, r.Err))
			continue
		}
		entries = append(entries, Entry{Record: r.Record, Fingerprint: r.Fingerprint})
	}
	return entries, diags
}

// SharedSizes keeps the records whose size occurs more than once. A file with
// a unique size cannot have a byte-identical twin.
func SharedSizes(records []FileRecord) []FileRecord {
	counts := make(map[int64]int, len(records))
	for _, r := range records {
		counts[r.Size]++
	}
	out := make([]FileRecord, 0, len(records))
	for _, r := range records {
		if counts[r.Size] > 1 {
			out = append(out, r)
		}
	}
	return out
}
