package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"photodup/dedup"
	"photodup/logger"
	"photodup/utils"
)

func init() {
	logger.Init("error")
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func relPaths(t *testing.T, root string, recs []dedup.FileRecord) []string {
	t.Helper()
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		rel, err := filepath.Rel(root, r.Path)
		if err != nil {
			t.Fatalf("rel: %v", err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEnumerateLexicalDepthFirst(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"b/2.nef", "a/z.jpg", "a/sub/x.nef", "c.txt", "a/a.nef"} {
		writeFile(t, filepath.Join(root, p), []byte(p))
	}
	recs, diags, err := Enumerate(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	want := []string{"a/a.nef", "a/sub/x.nef", "a/z.jpg", "b/2.nef", "c.txt"}
	if got := relPaths(t, root, recs); !equalStrings(got, want) {
		t.Fatalf("order %v, want %v", got, want)
	}
	for i, r := range recs {
		if r.Index != i {
			t.Fatalf("record %s has index %d, want %d", r.Path, r.Index, i)
		}
		if !filepath.IsAbs(r.Path) {
			t.Fatalf("path not absolute: %s", r.Path)
		}
	}
}

func TestEnumerateClassifiesRecords(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "DSC_0001.NEF"), []byte("raw"))
	writeFile(t, filepath.Join(root, "DSC_0001.JPG"), []byte("jpg"))
	writeFile(t, filepath.Join(root, "notes.txt"), []byte("txt"))
	recs, _, err := Enumerate(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	byName := map[string]dedup.FileRecord{}
	for _, r := range recs {
		byName[r.Name] = r
	}
	if r := byName["DSC_0001.NEF"]; r.Category != dedup.CategoryRaw || r.Ext != ".nef" || r.Size != 3 {
		t.Fatalf("unexpected raw record: %+v", r)
	}
	if r := byName["DSC_0001.JPG"]; r.Category != dedup.CategoryJPEG || r.Ext != ".jpg" {
		t.Fatalf("unexpected jpeg record: %+v", r)
	}
	if r := byName["notes.txt"]; r.Category != dedup.CategoryOther {
		t.Fatalf("unexpected other record: %+v", r)
	}
	if runtime.GOOS != "windows" && byName["notes.txt"].FileID == "" {
		t.Fatal("expected a file id on unix")
	}
}

func TestEnumerateSniffsUnknownExtensions(t *testing.T) {
	root := t.TempDir()
	jpegHeader := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	writeFile(t, filepath.Join(root, "export.bin"), jpegHeader)
	writeFile(t, filepath.Join(root, "plain.bin"), []byte("plain"))

	recs, _, err := Enumerate(context.Background(), root, Options{SniffTypes: true})
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if recs[0].Name != "export.bin" || recs[0].Category != dedup.CategoryJPEG {
		t.Fatalf("expected sniffed jpeg, got %+v", recs[0])
	}
	if recs[1].Category != dedup.CategoryOther {
		t.Fatalf("expected other, got %+v", recs[1])
	}

	recs, _, err = Enumerate(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if recs[0].Category != dedup.CategoryOther {
		t.Fatal("sniffing must be opt-in")
	}
}

func TestEnumerateFilters(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".cache", "thumb.jpg"), []byte("x"))
	writeFile(t, filepath.Join(root, "._DSC_0001.NEF"), []byte("x"))
	writeFile(t, filepath.Join(root, "DSC_0001.NEF"), []byte("x"))
	writeFile(t, filepath.Join(root, "DSC_0001.xmp"), []byte("x"))
	writeFile(t, filepath.Join(root, "report.txt"), []byte("x"))

	opts := Options{
		SkipHidden: true,
		Matcher:    utils.NewPatternMatcher(nil, []string{"*.xmp"}),
		Skip:       []string{filepath.Join(root, "report.txt")},
	}
	recs, _, err := Enumerate(context.Background(), root, opts)
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if got := relPaths(t, root, recs); !equalStrings(got, []string{"DSC_0001.NEF"}) {
		t.Fatalf("unexpected records: %v", got)
	}

	recs, _, err = Enumerate(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("expected every file without filters, got %d", len(recs))
	}
}

func TestEnumerateSkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	target := filepath.Join(root, "a.nef")
	writeFile(t, target, []byte("x"))
	if err := os.Symlink(target, filepath.Join(root, "b.nef")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	recs, _, err := Enumerate(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if got := relPaths(t, root, recs); !equalStrings(got, []string{"a.nef"}) {
		t.Fatalf("unexpected records: %v", got)
	}
}

func TestEnumerateReportsUnreadableDirectories(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "a.nef"), []byte("x"))
	writeFile(t, filepath.Join(root, "b.nef"), []byte("x"))
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	recs, diags, err := Enumerate(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if got := relPaths(t, root, recs); !equalStrings(got, []string{"b.nef"}) {
		t.Fatalf("unexpected records: %v", got)
	}
	if len(diags) != 1 || diags[0].Kind != dedup.KindEnumerationError || diags[0].Path != locked {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
}

func TestEnumerateInvalidRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.nef")
	writeFile(t, file, []byte("x"))
	for _, root := range []string{filepath.Join(dir, "missing"), file} {
		if _, _, err := Enumerate(context.Background(), root, Options{}); !errors.Is(err, ErrInvalidRoot) {
			t.Errorf("%s: expected ErrInvalidRoot, got %v", root, err)
		}
	}
}

func TestEnumerateCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.nef"), []byte("x"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Enumerate(ctx, root, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
