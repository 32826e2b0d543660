package metadata

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"
)

// ErrUnavailable is returned when a file holds no parseable EXIF container.
var ErrUnavailable = errors.New("metadata unavailable")

func init() {
	exif.RegisterParsers(mknote.All...)
}

// Reader extracts embedded EXIF tags from JPEG and TIFF-based raw files.
type Reader struct {
	// MaxBytes bounds how much of each file the decoder may consume; 0 means
	// unlimited.
	MaxBytes int64
}

// Read returns every decoded tag keyed by its EXIF field name. Values are
// plain strings with surrounding quotes removed. Open failures are returned
// as is; ErrUnavailable means the file was read but holds no usable EXIF.
func (r Reader) Read(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if r.MaxBytes > 0 {
		reader = io.LimitReader(f, r.MaxBytes)
	}
	x, err := exif.Decode(reader)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	tags := tagCollector{}
	if err := x.Walk(tags); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return tags, nil
}

type tagCollector map[string]string

func (c tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag == nil {
		return nil
	}
	c[string(name)] = tagValue(tag)
	return nil
}

func tagValue(tag *tiff.Tag) string {
	if v, err := tag.StringVal(); err == nil {
		return strings.TrimSpace(strings.TrimRight(v, "\x00"))
	}
	return strings.Trim(tag.String(), `"`)
}
