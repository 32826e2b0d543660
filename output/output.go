package output

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"photodup/config"
)

// Writer renders reports in the configured format and publishes them
// atomically: the destination either holds a complete report or is untouched.
type Writer struct {
	path   string
	format string
}

func New(cfg *config.Config) (*Writer, error) {
	format := strings.ToLower(cfg.OutputFormat)
	if format == "" {
		format = "text"
	}
	if _, ok := renderers[format]; !ok {
		return nil, fmt.Errorf("unsupported output format: %s", cfg.OutputFormat)
	}
	path, err := filepath.Abs(cfg.OutputFileName)
	if err != nil {
		return nil, err
	}
	return &Writer{path: path, format: format}, nil
}

// Path is the absolute destination of the report.
func (w *Writer) Path() string { return w.path }

func (w *Writer) Write(rep *Report) error {
	var buf bytes.Buffer
	bw := bufio.NewWriterSize(&buf, 64*1024)
	if err := Render(bw, rep, w.format); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Dir(w.path), filepath.Base(w.path), buf.Bytes(), 0o644)
}

type renderFunc func(io.Writer, *Report) error

var renderers = map[string]renderFunc{
	"text": renderText,
	"html": renderHTML,
	"json": renderJSON,
}

// Render writes rep to out in the named format.
func Render(out io.Writer, rep *Report, format string) error {
	render, ok := renderers[format]
	if !ok {
		return fmt.Errorf("unsupported output format: %s", format)
	}
	return render(out, rep)
}

// writeFileAtomic writes data to a hidden temporary file in dir and renames
// it over name.
func writeFileAtomic(dir, name string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, filepath.Join(dir, name))
}
