package markdown

import (
	"time"

	"github.com/goliatone/go-gitcontent/internal/content"
	"github.com/goliatone/go-gitcontent/internal/identity"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

// BuildItem parses a fetched file into an item. Files without front matter
// keep their whole content as body and carry empty metadata.
func BuildItem(collection string, entry interfaces.SourceEntry, source []byte, fetchedAt time.Time) *content.Item {
	meta, body, _ := ParseFrontMatter(source)
	return &content.Item{
		ID:         identity.ItemUUID(collection, entry.SHA, entry.Path),
		Collection: collection,
		Slug:       content.SlugFromFilename(entry.Name),
		Filename:   entry.Name,
		Path:       entry.Path,
		SHA:        entry.SHA,
		Metadata:   meta,
		Body:       string(body),
		FetchedAt:  fetchedAt,
	}
}

// SynthesizeImageItem builds an image item straight from a listing entry,
// for uploads dropped into the images folder without a markdown wrapper.
func SynthesizeImageItem(collection string, entry interfaces.SourceEntry, fetchedAt time.Time) *content.Item {
	return &content.Item{
		ID:         identity.ItemUUID(collection, entry.SHA, entry.Path),
		Collection: collection,
		Slug:       content.SlugFromFilename(entry.Name),
		Filename:   entry.Name,
		Path:       entry.Path,
		SHA:        entry.SHA,
		Metadata: content.Metadata{
			content.KeyTitle:       entry.Name,
			content.KeyPublish:     true,
			content.KeyDate:        fetchedAt.UTC().Format(time.RFC3339),
			content.KeyImageType:   content.ImageTypeUpload,
			content.KeyUploadImage: entry.Path,
		},
		Synthesized: true,
		FetchedAt:   fetchedAt,
	}
}
