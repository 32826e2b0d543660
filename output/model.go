package output

import (
	"time"

	"photodup/dedup"
	"photodup/systeminfo"
)

const SchemaVersion = "1.0.0"

// Status separates an empty archive from an archive without duplicates.
type Status string

const (
	StatusNoFilesScanned  Status = "no_files_scanned"
	StatusNoDuplicates    Status = "no_duplicates"
	StatusDuplicatesFound Status = "duplicates_found"
)

type Metrics struct {
	StartTime             string `json:"start_time"`
	EndTime               string `json:"end_time"`
	FilesScanned          int    `json:"files_scanned"`
	FilesConsidered       int    `json:"files_considered"`
	FilesFingerprinted    int    `json:"files_fingerprinted"`
	SkippedUniqueSize     int    `json:"skipped_unique_size,omitempty"`
	SingleCategoryBuckets int    `json:"single_category_buckets,omitempty"`
}

type Member struct {
	Path      string    `json:"path"`
	Category  string    `json:"category"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	BirthTime time.Time `json:"birth_time,omitzero"`
	// HardLinkOf names an earlier member backed by the same inode.
	HardLinkOf string `json:"hard_link_of,omitempty"`
}

type Group struct {
	Key     string   `json:"key"`
	Members []Member `json:"members"`
	Raw     []string `json:"raw,omitempty"`
	JPEG    []string `json:"jpeg,omitempty"`
}

// Report is the renderer-independent result of one run. It is built once and
// not modified afterwards.
type Report struct {
	SchemaVersion string                 `json:"schema_version"`
	Mode          string                 `json:"mode"`
	Description   string                 `json:"description"`
	Root          string                 `json:"root"`
	Algorithm     string                 `json:"algorithm,omitempty"`
	Verified      bool                   `json:"verified,omitempty"`
	Status        Status                 `json:"status"`
	GroupCount    int                    `json:"group_count"`
	Groups        []Group                `json:"groups"`
	Diagnostics   []dedup.Diagnostic     `json:"diagnostics"`
	Census        []dedup.FolderCount    `json:"folder_census,omitempty"`
	Metrics       Metrics                `json:"metrics"`
	SystemInfo    *systeminfo.SystemInfo `json:"system_info,omitempty"`
}

// Input carries everything a run produced.
type Input struct {
	Root        string
	Strategy    dedup.Strategy
	Algorithm   string
	Verified    bool
	Groups      []*dedup.Group
	Diagnostics []dedup.Diagnostic
	Census      []dedup.FolderCount
	Metrics     Metrics
	SystemInfo  *systeminfo.SystemInfo
}

func Build(in Input) *Report {
	rep := &Report{
		SchemaVersion: SchemaVersion,
		Mode:          in.Strategy.String(),
		Description:   in.Strategy.Description(),
		Root:          in.Root,
		Algorithm:     in.Algorithm,
		Verified:      in.Verified,
		GroupCount:    len(in.Groups),
		Groups:        make([]Group, 0, len(in.Groups)),
		Diagnostics:   append([]dedup.Diagnostic{}, in.Diagnostics...),
		Census:        in.Census,
		Metrics:       in.Metrics,
		SystemInfo:    in.SystemInfo,
	}
	for _, g := range in.Groups {
		rep.Groups = append(rep.Groups, buildGroup(in.Strategy, g))
	}
	switch {
	case in.Metrics.FilesScanned == 0:
		rep.Status = StatusNoFilesScanned
	case rep.GroupCount == 0:
		rep.Status = StatusNoDuplicates
	default:
		rep.Status = StatusDuplicatesFound
	}
	return rep
}

func buildGroup(s dedup.Strategy, g *dedup.Group) Group {
	out := Group{Key: g.Fingerprint.Label, Members: make([]Member, 0, len(g.Members))}
	seen := make(map[string]string, len(g.Members))
	for _, rec := range g.Members {
		m := Member{
			Path:      rec.Path,
			Category:  rec.Category.String(),
			Size:      rec.Size,
			ModTime:   rec.ModTime,
			BirthTime: rec.BirthTime,
		}
		if rec.FileID != "" {
			if first, ok := seen[rec.FileID]; ok {
				m.HardLinkOf = first
			} else {
				seen[rec.FileID] = rec.Path
			}
		}
		out.Members = append(out.Members, m)
	}
	if s == dedup.StrategyCrossFormat {
		for _, rec := range g.Raw {
			out.Raw = append(out.Raw, rec.Path)
		}
		for _, rec := range g.JPEG {
			out.JPEG = append(out.JPEG, rec.Path)
		}
	}
	return out
}
