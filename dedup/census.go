package dedup

import (
	"path/filepath"
	"sort"
	"strings"
)

// FolderCount tallies raw and JPEG files below one top-level folder.
type FolderCount struct {
	Folder string `json:"folder"`
	Raw    int    `json:"raw"`
	JPEG   int    `json:"jpeg"`
}

// Census counts raw and JPEG files per immediate subfolder of root, including
// nested files. Files directly in root are counted under ".". Folders without
// any raw or JPEG file are omitted; the result is sorted by folder name.
func Census(root string, records []FileRecord) []FolderCount {
	counts := make(map[string]*FolderCount)
	for _, r := range records {
		if r.Category != CategoryRaw && r.Category != CategoryJPEG {
			continue
		}
		folder := topFolder(root, r.Path)
		fc, ok := counts[folder]
		if !ok {
			fc = &FolderCount{Folder: folder}
			counts[folder] = fc
		}
		if r.Category == CategoryRaw {
			fc.Raw++
		} else {
			fc.JPEG++
		}
	}
	out := make([]FolderCount, 0, len(counts))
	for _, fc := range counts {
		out = append(out, *fc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Folder < out[j].Folder })
	return out
}

func topFolder(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "."
	}
	rel = filepath.ToSlash(rel)
	idx := strings.IndexByte(rel, '/')
	if idx < 0 {
		return "."
	}
	return rel[:idx]
}
