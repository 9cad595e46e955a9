package content

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Item is one parsed content file. Items are immutable once cached; callers
// that need to tweak metadata must Clone first.
type Item struct {
	ID         uuid.UUID `json:"id"`
	Collection string    `json:"collection"`
	Slug       string    `json:"slug"`
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	SHA        string    `json:"sha"`
	Metadata   Metadata  `json:"metadata"`
	Body       string    `json:"body"`
	// Synthesized marks image items built from a listing entry rather than a
	// fetched markdown file.
	Synthesized bool      `json:"synthesized,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Clone returns a copy with its own metadata map.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	out := *i
	out.Metadata = i.Metadata.Clone()
	return &out
}

// Title returns the title metadata or the filename without extension.
func (i *Item) Title() string {
	if title := strings.TrimSpace(i.Metadata.String(KeyTitle)); title != "" {
		return title
	}
	return TitleFromFilename(i.Filename)
}

// RawDate returns the date metadata as written.
func (i *Item) RawDate() string {
	return i.Metadata.String(KeyDate)
}

// Date parses the date metadata.
func (i *Item) Date() (time.Time, bool) {
	return ParseDate(i.RawDate())
}

// TitleFromFilename strips the extension from a filename.
func TitleFromFilename(filename string) string {
	return strings.TrimSuffix(filename, path.Ext(filename))
}

// SlugFromFilename strips a markdown extension from a filename. Other
// extensions are kept so photo.png and photo.jpg stay distinct.
func SlugFromFilename(filename string) string {
	lower := strings.ToLower(filename)
	for _, ext := range []string{".md", ".markdown"} {
		if strings.HasSuffix(lower, ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}

// IsMarkdown reports whether filename carries a markdown extension.
func IsMarkdown(filename string) bool {
	return SlugFromFilename(filename) != filename
}
