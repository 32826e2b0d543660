package dedup

import (
	"path/filepath"
	"strings"
	"time"
)

// Category buckets a file by media type for cross-format matching.
type Category int

const (
	CategoryOther Category = iota
	CategoryRaw
	CategoryJPEG
)

func (c Category) String() string {
	switch c {
	case CategoryRaw:
		return "raw"
	case CategoryJPEG:
		return "jpeg"
	default:
		return "other"
	}
}

// FileRecord describes one enumerated regular file. Records are built once by
// the enumerator and never modified afterwards.
type FileRecord struct {
	Index     int       `json:"-"`
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Ext       string    `json:"ext"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	BirthTime time.Time `json:"birth_time,omitzero"`
	FileID    string    `json:"file_id,omitempty"`
	Category  Category  `json:"-"`
}

// Stem returns the file name without its extension.
func (r FileRecord) Stem() string {
	return strings.TrimSuffix(r.Name, filepath.Ext(r.Name))
}

// Classifier maps lower-cased extensions to categories.
type Classifier struct {
	raw  map[string]struct{}
	jpeg map[string]struct{}
}

var (
	DefaultRawExtensions  = []string{".nef", ".nrw", ".cr2", ".cr3", ".arw", ".raf", ".orf", ".rw2", ".dng", ".pef"}
	DefaultJPEGExtensions = []string{".jpg", ".jpeg"}
)

func NewClassifier(rawExts, jpegExts []string) *Classifier {
	c := &Classifier{
		raw:  make(map[string]struct{}, len(rawExts)),
		jpeg: make(map[string]struct{}, len(jpegExts)),
	}
	for _, ext := range rawExts {
		c.raw[NormalizeExt(ext)] = struct{}{}
	}
	for _, ext := range jpegExts {
		c.jpeg[NormalizeExt(ext)] = struct{}{}
	}
	return c
}

// Classify reports the category for an extension, matching case-insensitively.
func (c *Classifier) Classify(ext string) Category {
	ext = NormalizeExt(ext)
	if _, ok := c.raw[ext]; ok {
		return CategoryRaw
	}
	if _, ok := c.jpeg[ext]; ok {
		return CategoryJPEG
	}
	return CategoryOther
}

// NormalizeExt lower-cases ext and guarantees a leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
