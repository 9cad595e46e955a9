package content

import (
	"strings"
	"time"
)

// Recognized metadata keys. Any other key is carried through untouched.
const (
	KeyTitle       = "title"
	KeyDate        = "date"
	KeyPublish     = "publish"
	KeyDescription = "description"
	KeyAltText     = "altText"
	KeyImage       = "image"
	KeyImageType   = "imageType"
	KeyUploadImage = "uploadImage"
	KeyExternalURL = "externalUrl"
)

// Image source types understood by the imageType key.
const (
	ImageTypeURL    = "url"
	ImageTypeUpload = "upload"
)

// Metadata is the key/value map extracted from front matter. Values are
// either string or bool.
type Metadata map[string]any

// String returns the string value stored under key, or "" when the key is
// missing or holds a non-string value.
func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	value, _ := m[key].(string)
	return value
}

// Bool returns the boolean stored under key. ok is false when the key is
// missing or holds a string, so "true" written in quotes never counts.
func (m Metadata) Bool(key string) (value bool, ok bool) {
	if m == nil {
		return false, false
	}
	value, ok = m[key].(bool)
	return value, ok
}

// Clone returns a shallow copy safe for independent mutation.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for key, value := range m {
		out[key] = value
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate interprets a front matter date. Values without a zone are read
// as UTC.
func ParseDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
