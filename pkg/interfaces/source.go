package interfaces

import "context"

// Entry types reported by content sources.
const (
	EntryTypeFile = "file"
	EntryTypeDir  = "dir"
)

// SourceEntry describes one entry of a directory listing returned by a
// content source. SHA is the content hash used as cache identity; two entries
// with the same SHA carry byte-identical content.
type SourceEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	SHA         string `json:"sha"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"download_url,omitempty"`
}

// IsFile reports whether the entry is a regular file.
func (e SourceEntry) IsFile() bool {
	return e.Type == EntryTypeFile
}

// ContentSource lists collection directories and reads raw entry content.
// List must return an error matching source.ErrNotFound when the directory
// does not exist.
type ContentSource interface {
	List(ctx context.Context, dir string) ([]SourceEntry, error)
	Read(ctx context.Context, entry SourceEntry) ([]byte, error)
	Describe() string
}
