package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"photodup/config"
	"photodup/dedup"
	"photodup/systeminfo"
)

var mod = time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC)

func rec(path string, cat dedup.Category) dedup.FileRecord {
	return dedup.FileRecord{Path: path, Name: filepath.Base(path), Size: 10, ModTime: mod, Category: cat}
}

func crossGroup() *dedup.Group {
	raw := rec("/photos/a.NEF", dedup.CategoryRaw)
	jpg := rec("/photos/a.jpg", dedup.CategoryJPEG)
	return &dedup.Group{
		Fingerprint: dedup.Fingerprint{Strategy: dedup.StrategyCrossFormat, Key: "a\x002023-01-01 10:00:00", Label: "stem: a | time: 2023-01-01 10:00:00"},
		Members:     []dedup.FileRecord{raw, jpg},
		Raw:         []dedup.FileRecord{raw},
		JPEG:        []dedup.FileRecord{jpg},
	}
}

func TestBuildStatus(t *testing.T) {
	cases := []struct {
		name   string
		in     Input
		status Status
	}{
		{"empty", Input{Strategy: dedup.StrategyContentHash}, StatusNoFilesScanned},
		{"none", Input{Strategy: dedup.StrategyContentHash, Metrics: Metrics{FilesScanned: 3}}, StatusNoDuplicates},
		{"found", Input{Strategy: dedup.StrategyCrossFormat, Groups: []*dedup.Group{crossGroup()}, Metrics: Metrics{FilesScanned: 2}}, StatusDuplicatesFound},
	}
	for _, tc := range cases {
		rep := Build(tc.in)
		if rep.Status != tc.status {
			t.Errorf("%s: status %s, want %s", tc.name, rep.Status, tc.status)
		}
		if rep.Groups == nil || rep.Diagnostics == nil {
			t.Errorf("%s: groups and diagnostics must render as lists", tc.name)
		}
	}
}

func TestBuildCrossFormatPartition(t *testing.T) {
	rep := Build(Input{Strategy: dedup.StrategyCrossFormat, Groups: []*dedup.Group{crossGroup()}, Metrics: Metrics{FilesScanned: 2}})
	if rep.GroupCount != 1 || rep.Mode != "cross" {
		t.Fatalf("unexpected report: %+v", rep)
	}
	g := rep.Groups[0]
	if g.Key != "stem: a | time: 2023-01-01 10:00:00" {
		t.Fatalf("unexpected key: %q", g.Key)
	}
	if len(g.Raw) != 1 || g.Raw[0] != "/photos/a.NEF" || len(g.JPEG) != 1 || g.JPEG[0] != "/photos/a.jpg" {
		t.Fatalf("unexpected partition: %+v", g)
	}
}

func TestBuildAnnotatesHardLinks(t *testing.T) {
	a := rec("/photos/a.nef", dedup.CategoryRaw)
	a.FileID = "dev=1,inode=7"
	b := rec("/photos/b.nef", dedup.CategoryRaw)
	b.FileID = "dev=1,inode=7"
	c := rec("/photos/c.nef", dedup.CategoryRaw)
	g := &dedup.Group{Fingerprint: dedup.Fingerprint{Strategy: dedup.StrategyContentHash, Key: "k", Label: "k"}, Members: []dedup.FileRecord{a, b, c}}
	rep := Build(Input{Strategy: dedup.StrategyContentHash, Groups: []*dedup.Group{g}, Metrics: Metrics{FilesScanned: 3}})
	m := rep.Groups[0].Members
	if m[0].HardLinkOf != "" || m[1].HardLinkOf != "/photos/a.nef" || m[2].HardLinkOf != "" {
		t.Fatalf("unexpected hard link annotation: %+v", m)
	}
	if len(rep.Groups[0].Raw) != 0 {
		t.Fatal("category partition is only reported for cross-format groups")
	}
}

func TestRenderTextDistinguishesEmptyRuns(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, Build(Input{Strategy: dedup.StrategyContentHash}), "text"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No files scanned.") {
		t.Fatalf("missing empty-archive notice:\n%s", buf.String())
	}
	buf.Reset()
	if err := Render(&buf, Build(Input{Strategy: dedup.StrategyContentHash, Metrics: Metrics{FilesScanned: 4}}), "text"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No duplicates found.") || strings.Contains(buf.String(), "No files scanned.") {
		t.Fatalf("unexpected notice:\n%s", buf.String())
	}
}

func TestRenderTextGroupsAndDiagnostics(t *testing.T) {
	rep := Build(Input{
		Root:        "/photos",
		Strategy:    dedup.StrategyCrossFormat,
		Groups:      []*dedup.Group{crossGroup()},
		Diagnostics: []dedup.Diagnostic{{Kind: dedup.KindReadError, Path: "/photos/bad.nef", Message: "permission denied"}},
		Census:      []dedup.FolderCount{{Folder: "2023", Raw: 2, JPEG: 1}},
		Metrics:     Metrics{FilesScanned: 3},
	})
	var buf bytes.Buffer
	if err := Render(&buf, rep, "text"); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Duplicate groups: 1",
		"[1] stem: a | time: 2023-01-01 10:00:00",
		"raw (1):",
		"    - /photos/a.NEF",
		"jpeg (1):",
		"2023: raw=2 jpeg=1",
		"ReadError /photos/bad.nef: permission denied",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderHTML(t *testing.T) {
	g := crossGroup()
	g.Members[0].Path = "/photos/<a>.NEF"
	g.Raw[0].Path = "/photos/<a>.NEF"
	rep := Build(Input{Strategy: dedup.StrategyCrossFormat, Groups: []*dedup.Group{g}, Metrics: Metrics{FilesScanned: 2}})
	var buf bytes.Buffer
	if err := Render(&buf, rep, "html"); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Found 1 duplicate groups") {
		t.Fatalf("missing group count:\n%s", out)
	}
	if !strings.Contains(out, "Group 1: stem: a | time: 2023-01-01 10:00:00") {
		t.Fatalf("missing group header:\n%s", out)
	}
	if strings.Contains(out, "<a>.NEF") || !strings.Contains(out, "&lt;a&gt;.NEF") {
		t.Fatalf("paths must be escaped:\n%s", out)
	}

	buf.Reset()
	if err := Render(&buf, Build(Input{Strategy: dedup.StrategyMetadata}), "html"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No files scanned.") {
		t.Fatalf("missing empty notice:\n%s", buf.String())
	}
}

func TestRenderJSON(t *testing.T) {
	rep := Build(Input{
		Root:       "/photos",
		Strategy:   dedup.StrategyCrossFormat,
		Groups:     []*dedup.Group{crossGroup()},
		Metrics:    Metrics{FilesScanned: 2},
		SystemInfo: &systeminfo.SystemInfo{Hostname: "darkroom"},
	})
	var buf bytes.Buffer
	if err := Render(&buf, rep, "json"); err != nil {
		t.Fatalf("render: %v", err)
	}
	var decoded struct {
		SchemaVersion string `json:"schema_version"`
		Status        string `json:"status"`
		GroupCount    int    `json:"group_count"`
		Groups        []struct {
			Key  string   `json:"key"`
			Raw  []string `json:"raw"`
			JPEG []string `json:"jpeg"`
		} `json:"groups"`
		SystemInfo struct {
			Hostname string `json:"hostname"`
		} `json:"system_info"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if decoded.SchemaVersion != SchemaVersion || decoded.Status != "duplicates_found" || decoded.GroupCount != 1 {
		t.Fatalf("unexpected header: %+v", decoded)
	}
	if len(decoded.Groups) != 1 || decoded.Groups[0].Raw[0] != "/photos/a.NEF" || decoded.Groups[0].JPEG[0] != "/photos/a.jpg" {
		t.Fatalf("unexpected groups: %+v", decoded.Groups)
	}
	if decoded.SystemInfo.Hostname != "darkroom" {
		t.Fatalf("unexpected system info: %+v", decoded.SystemInfo)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if err := Render(&bytes.Buffer{}, Build(Input{}), "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := New(&config.Config{OutputFormat: "xml", OutputFileName: "r.xml"}); err == nil {
		t.Fatal("expected writer to reject unknown format")
	}
}

func TestWriterReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(path, []byte("old report"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	w, err := New(&config.Config{OutputFormat: "text", OutputFileName: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if w.Path() != path {
		t.Fatalf("unexpected path: %s", w.Path())
	}
	if err := w.Write(Build(Input{Strategy: dedup.StrategyContentHash, Metrics: Metrics{FilesScanned: 1}})); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "No duplicates found.") {
		t.Fatalf("unexpected content:\n%s", data)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestPrintSummary(t *testing.T) {
	rep := Build(Input{
		Root:     "/photos",
		Strategy: dedup.StrategyCrossFormat,
		Groups:   []*dedup.Group{crossGroup()},
		Census:   []dedup.FolderCount{{Folder: "2023", Raw: 12, JPEG: 7}},
		Metrics:  Metrics{FilesScanned: 2, FilesFingerprinted: 2, SingleCategoryBuckets: 3},
	})
	var buf bytes.Buffer
	if err := PrintSummary(&buf, rep, "/tmp/report.txt"); err != nil {
		t.Fatalf("summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Duplicate groups", "Single-format buckets", "duplicates_found", "/tmp/report.txt", "2023", "12"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
