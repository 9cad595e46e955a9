package source

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

// Local serves content from a filesystem, typically a working copy of the
// repository. Hashes are git blob SHA-1s so they agree with the remote API
// for identical bytes.
type Local struct {
	fsys  fs.FS
	label string
}

var _ interfaces.ContentSource = (*Local)(nil)

// NewLocal wraps fsys. label is used by Describe.
func NewLocal(fsys fs.FS, label string) *Local {
	return &Local{fsys: fsys, label: label}
}

// Describe returns the label given at construction.
func (l *Local) Describe() string {
	return l.label
}

// List reads dir and hashes each regular file.
func (l *Local) List(ctx context.Context, dir string) ([]interfaces.SourceEntry, error) {
	clean := cleanDir(dir)
	dirEntries, err := fs.ReadDir(l.fsys, clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFoundError(dir)
		}
		return nil, readError(err, clean)
	}

	entries := make([]interfaces.SourceEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := interfaces.SourceEntry{
			Name: de.Name(),
			Path: path.Join(clean, de.Name()),
			Type: interfaces.EntryTypeFile,
		}
		if de.IsDir() {
			entry.Type = interfaces.EntryTypeDir
			entries = append(entries, entry)
			continue
		}
		data, err := fs.ReadFile(l.fsys, entry.Path)
		if err != nil {
			return nil, readError(err, entry.Path)
		}
		entry.Size = int64(len(data))
		entry.SHA = GitBlobSHA(data)
		entries = append(entries, entry)
	}
	return entries, nil
}

// Read returns the bytes at entry.Path.
func (l *Local) Read(ctx context.Context, entry interfaces.SourceEntry) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.fsys, cleanDir(entry.Path))
	if err != nil {
		return nil, readError(err, entry.Path)
	}
	return data, nil
}

// GitBlobSHA returns the object id git assigns to data as a blob.
func GitBlobSHA(data []byte) string {
	h := sha1.New()
	h.Write([]byte("blob " + strconv.Itoa(len(data)) + "\x00"))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func cleanDir(dir string) string {
	trimmed := strings.Trim(strings.TrimSpace(dir), "/")
	if trimmed == "" {
		return "."
	}
	return path.Clean(trimmed)
}
