package dedup

import "strings"

// Tag names read from the embedded metadata, in signature order.
const (
	TagDateTimeOriginal = "DateTimeOriginal"
	TagMake             = "Make"
	TagModel            = "Model"
	TagExposureTime     = "ExposureTime"
)

const signatureDelimiter = "#"

// Signature is the ordered set of metadata values compared between files.
type Signature struct {
	DateTimeOriginal string
	Make             string
	Model            string
	ExposureTime     string
}

// SignatureFromTags picks the signature fields, defaulting missing ones to "".
func SignatureFromTags(tags map[string]string) Signature {
	return Signature{
		DateTimeOriginal: strings.TrimSpace(tags[TagDateTimeOriginal]),
		Make:             strings.TrimSpace(tags[TagMake]),
		Model:            strings.TrimSpace(tags[TagModel]),
		ExposureTime:     strings.TrimSpace(tags[TagExposureTime]),
	}
}

func (s Signature) fields() []string {
	return []string{s.DateTimeOriginal, s.Make, s.Model, s.ExposureTime}
}

func (s Signature) Empty() bool {
	for _, f := range s.fields() {
		if f != "" {
			return false
		}
	}
	return true
}

// Key joins the fields with a delimiter not expected in any value.
func (s Signature) Key() string {
	return strings.Join(s.fields(), signatureDelimiter)
}

func (s Signature) Label() string {
	parts := []string{
		"taken: " + orDash(s.DateTimeOriginal),
		"camera: " + orDash(strings.TrimSpace(s.Make+" "+s.Model)),
		"exposure: " + orDash(s.ExposureTime),
	}
	return strings.Join(parts, " | ")
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
