package dedup

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
)

// Strategy selects how files are fingerprinted and which groups survive.
type Strategy int

const (
	// StrategyContentHash groups files by a digest of their full contents.
	StrategyContentHash Strategy = iota + 1
	// StrategyMetadata groups files by their embedded metadata signature.
	StrategyMetadata
	// StrategyNameMetadata groups files sharing both file name and signature.
	StrategyNameMetadata
	// StrategyCrossFormat pairs raw files with JPEG siblings by stem and mtime.
	StrategyCrossFormat
)

var strategyNames = map[Strategy]string{
	StrategyContentHash:  "hash",
	StrategyMetadata:     "exif",
	StrategyNameMetadata: "name",
	StrategyCrossFormat:  "cross",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Description is the operator-facing summary of the matching rule.
func (s Strategy) Description() string {
	switch s {
	case StrategyContentHash:
		return "identical file contents"
	case StrategyMetadata:
		return "identical embedded metadata (capture time, make, model, exposure)"
	case StrategyNameMetadata:
		return "identical file name and embedded metadata"
	case StrategyCrossFormat:
		return "raw file and JPEG sharing name stem and modification time"
	}
	return s.String()
}

// ParseStrategy accepts the run-mode names used on the command line.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q (want hash, exif, name or cross)", name)
}

// Accepts reports whether a file takes part in the strategy at all. Files a
// strategy does not accept are ignored rather than reported.
func (s Strategy) Accepts(rec FileRecord) bool {
	switch s {
	case StrategyContentHash:
		return true
	case StrategyMetadata, StrategyNameMetadata:
		return rec.Category == CategoryRaw
	case StrategyCrossFormat:
		return rec.Category == CategoryRaw || rec.Category == CategoryJPEG
	}
	return false
}

// Retain is the post-grouping predicate for the strategy.
func (s Strategy) Retain(g *Group) bool {
	if s == StrategyCrossFormat {
		return len(g.Raw) > 0 && len(g.JPEG) > 0
	}
	return len(g.Members) >= 2
}

// Fingerprint is a comparable signature of one file under one strategy.
type Fingerprint struct {
	Strategy Strategy
	Key      string
	Label    string
}

// Digester computes a content digest for a file.
type Digester interface {
	Algorithm() string
	Digest(path string) (string, error)
}

// MetadataReader returns the embedded tags of a file keyed by tag name.
type MetadataReader interface {
	Read(path string) (map[string]string, error)
}

const crossFormatTimeLayout = "2006-01-02 15:04:05"

// Extractor produces fingerprints for a single strategy.
type Extractor struct {
	Strategy Strategy
	Digester Digester
	Metadata MetadataReader
	// AllowEmptySignature lets files whose metadata parses but holds none of
	// the signature fields take part in metadata grouping.
	AllowEmptySignature bool
	// Location formats cross-format modification times; nil means local time.
	Location *time.Location
}

// Extract fingerprints rec. Failures are returned as *ExtractionError.
func (e *Extractor) Extract(rec FileRecord) (Fingerprint, error) {
	switch e.Strategy {
	case StrategyContentHash:
		return e.contentHash(rec)
	case StrategyMetadata:
		sig, err := e.signature(rec)
		if err != nil {
			return Fingerprint{}, err
		}
		return Fingerprint{Strategy: e.Strategy, Key: sig.Key(), Label: sig.Label()}, nil
	case StrategyNameMetadata:
		sig, err := e.signature(rec)
		if err != nil {
			return Fingerprint{}, err
		}
		return Fingerprint{
			Strategy: e.Strategy,
			Key:      rec.Name + "\x00" + sig.Key(),
			Label:    "file: " + rec.Name + " | " + sig.Label(),
		}, nil
	case StrategyCrossFormat:
		return e.nameTime(rec), nil
	}
	return Fingerprint{}, fmt.Errorf("unsupported strategy %s", e.Strategy)
}

func (e *Extractor) contentHash(rec FileRecord) (Fingerprint, error) {
	if e.Digester == nil {
		return Fingerprint{}, fmt.Errorf("content hash strategy requires a digester")
	}
	sum, err := e.Digester.Digest(rec.Path)
	if err != nil {
		return Fingerprint{}, &ExtractionError{Kind: KindReadError, Path: rec.Path, Err: err}
	}
	key := e.Digester.Algorithm() + ":" + sum
	return Fingerprint{Strategy: e.Strategy, Key: key, Label: key}, nil
}

func (e *Extractor) signature(rec FileRecord) (Signature, error) {
	if e.Metadata == nil {
		return Signature{}, fmt.Errorf("metadata strategy requires a metadata reader")
	}
	tags, err := e.Metadata.Read(rec.Path)
	if err != nil {
		var pe *fs.PathError
		if errors.As(err, &pe) {
			return Signature{}, &ExtractionError{Kind: KindReadError, Path: rec.Path, Err: err}
		}
		return Signature{}, &ExtractionError{Kind: KindMetadataUnavailable, Path: rec.Path, Err: err}
	}
	sig := SignatureFromTags(tags)
	if sig.Empty() && !e.AllowEmptySignature {
		return Signature{}, &ExtractionError{Kind: KindMetadataEmpty, Path: rec.Path}
	}
	return sig, nil
}

func (e *Extractor) nameTime(rec FileRecord) Fingerprint {
	loc := e.Location
	if loc == nil {
		loc = time.Local
	}
	stem := strings.ToLower(rec.Stem())
	ts := rec.ModTime.In(loc).Format(crossFormatTimeLayout)
	return Fingerprint{
		Strategy: e.Strategy,
		Key:      stem + "\x00" + ts,
		Label:    "stem: " + stem + " | time: " + ts,
	}
}
