package dedup

import (
	"errors"
	"fmt"
)

var (
	ErrRead                = errors.New("file unreadable")
	ErrMetadataUnavailable = errors.New("embedded metadata unavailable")
	ErrEnumeration         = errors.New("directory entry unavailable")
	ErrEmptySignature      = errors.New("embedded metadata has no signature fields")
)

type DiagnosticKind string

const (
	KindReadError           DiagnosticKind = "ReadError"
	KindMetadataUnavailable DiagnosticKind = "MetadataUnavailable"
	KindEnumerationError    DiagnosticKind = "EnumerationError"
	KindMetadataEmpty       DiagnosticKind = "MetadataEmpty"
)

func (k DiagnosticKind) sentinel() error {
	switch k {
	case KindReadError:
		return ErrRead
	case KindMetadataUnavailable:
		return ErrMetadataUnavailable
	case KindEnumerationError:
		return ErrEnumeration
	case KindMetadataEmpty:
		return ErrEmptySignature
	}
	return nil
}

// Diagnostic records a per-file failure surfaced to the operator.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Path    string         `json:"path"`
	Message string         `json:"message"`
}

// ExtractionError is returned when a file cannot be fingerprinted. It matches
// the sentinel for its kind under errors.Is.
type ExtractionError struct {
	Kind DiagnosticKind
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Diagnostic converts the error into its report form.
func (e *ExtractionError) Diagnostic() Diagnostic {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return Diagnostic{Kind: e.Kind, Path: e.Path, Message: msg}
}

// DiagnosticFor classifies an arbitrary error for path. Errors that are not
// ExtractionErrors are treated as read failures.
func DiagnosticFor(path string, err error) Diagnostic {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		d := ee.Diagnostic()
		if d.Path == "" {
			d.Path = path
		}
		return d
	}
	return Diagnostic{Kind: KindReadError, Path: path, Message: err.Error()}
}
