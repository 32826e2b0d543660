package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"photodup/dedup"
	"photodup/logger"
	"photodup/utils"

	"github.com/h2non/filetype"
)

// ErrInvalidRoot is returned when the archive root is missing, is not a
// directory or cannot be listed.
var ErrInvalidRoot = errors.New("invalid archive root")

// Options controls which files the enumerator yields and how they are
// classified.
type Options struct {
	Classifier *dedup.Classifier
	Matcher    *utils.PatternMatcher
	SkipHidden bool
	// SniffTypes classifies files with unrecognised extensions from their
	// leading bytes.
	SniffTypes bool
	// Skip lists paths never yielded, such as the report being written.
	Skip []string
}

// ValidateRoot checks that root is a listable directory.
func ValidateRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}
	f, err := os.Open(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}
	defer f.Close()
	if _, err := f.ReadDir(1); err != nil && err != io.EOF {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}
	return nil
}

// Enumerate lists every regular file under root in lexical depth-first
// order. Entries that cannot be read are reported as EnumerationError
// diagnostics and skipped; only an invalid root or cancellation fails the
// call. Symbolic links are not followed.
func Enumerate(ctx context.Context, root string, opts Options) ([]dedup.FileRecord, []dedup.Diagnostic, error) {
	if err := ValidateRoot(root); err != nil {
		return nil, nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = dedup.NewClassifier(dedup.DefaultRawExtensions, dedup.DefaultJPEGExtensions)
	}

	var (
		records []dedup.FileRecord
		diags   []dedup.Diagnostic
	)
	err = fastWalker{}.Walk(ctx, abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warnf("Failed to access %s: %v", path, err)
			diags = append(diags, dedup.Diagnostic{Kind: dedup.KindEnumerationError, Path: path, Message: err.Error()})
			return nil
		}
		if path != abs && opts.SkipHidden && utils.IsHidden(d.Name()) {
			logger.Debugf("Skipping hidden entry %s", path)
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			logger.Debugf("Skipping non-regular file %s", path)
			return nil
		}
		if skipped(path, opts.Skip) || !opts.Matcher.ShouldInclude(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			logger.Warnf("Failed to stat %s: %v", path, err)
			diags = append(diags, dedup.Diagnostic{Kind: dedup.KindEnumerationError, Path: path, Message: err.Error()})
			return nil
		}
		ext := dedup.NormalizeExt(filepath.Ext(d.Name()))
		category := classifier.Classify(ext)
		if category == dedup.CategoryOther && opts.SniffTypes {
			category = sniffCategory(path)
		}
		records = append(records, dedup.FileRecord{
			Index:     len(records),
			Path:      path,
			Name:      d.Name(),
			Ext:       ext,
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			BirthTime: birthTime(path),
			FileID:    getFileID(path),
			Category:  category,
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return records, diags, nil
}

func skipped(path string, skip []string) bool {
	for _, s := range skip {
		if utils.SamePath(path, s) {
			return true
		}
	}
	return false
}

// sniffCategory inspects the file header for JPEG and raw containers.
func sniffCategory(path string) dedup.Category {
	file, err := os.Open(path)
	if err != nil {
		return dedup.CategoryOther
	}
	defer file.Close()

	buf := make([]byte, 261)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return dedup.CategoryOther
	}
	kind, err := filetype.Match(buf[:n])
	if err != nil || kind == filetype.Unknown {
		return dedup.CategoryOther
	}
	switch kind.MIME.Value {
	case "image/jpeg":
		return dedup.CategoryJPEG
	case "image/x-canon-cr2":
		return dedup.CategoryRaw
	}
	return dedup.CategoryOther
}
