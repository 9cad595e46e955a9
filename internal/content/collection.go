package content

import (
	"sort"
	"strings"

	"github.com/goliatone/go-gitcontent/internal/runtimeconfig"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

// Kind distinguishes how a collection filters and renders its items.
type Kind string

const (
	KindPosts  Kind = runtimeconfig.KindPosts
	KindImages Kind = runtimeconfig.KindImages
)

// Collection is a named group of items backed by one repository folder.
type Collection struct {
	Name             string
	Kind             Kind
	Path             string
	Mount            string
	AcceptAllEntries bool
	Schema           *SchemaValidator
}

// CollectionFromConfig builds a Collection, compiling its schema when set.
func CollectionFromConfig(cfg runtimeconfig.CollectionConfig) (Collection, error) {
	collection := Collection{
		Name:             strings.TrimSpace(cfg.Name),
		Kind:             Kind(cfg.Kind),
		Path:             strings.Trim(strings.TrimSpace(cfg.Path), "/"),
		Mount:            cfg.MountName(),
		AcceptAllEntries: cfg.AcceptsAllEntries(),
	}
	if schema := strings.TrimSpace(cfg.Schema); schema != "" {
		validator, err := NewSchemaValidator(collection.Name, schema)
		if err != nil {
			return Collection{}, err
		}
		collection.Schema = validator
	}
	return collection, nil
}

// Accepts reports whether a listing entry becomes a member of the collection.
func (c Collection) Accepts(entry interfaces.SourceEntry) bool {
	if strings.TrimSpace(entry.Name) == "" {
		return false
	}
	return c.AcceptAllEntries || entry.IsFile()
}

// Visible applies the publication rule. Posts are opt-in: only a boolean
// true publishes them. Images are opt-out: only a boolean false hides them.
func (c Collection) Visible(item *Item) bool {
	if item == nil {
		return false
	}
	publish, ok := item.Metadata.Bool(KeyPublish)
	if c.Kind == KindImages {
		return !ok || publish
	}
	return ok && publish
}

// Filter returns the visible items in their original order.
func (c Collection) Filter(items []*Item) []*Item {
	out := make([]*Item, 0, len(items))
	for _, item := range items {
		if c.Visible(item) {
			out = append(out, item)
		}
	}
	return out
}

// Prepare filters and sorts items for display without touching the input.
func (c Collection) Prepare(items []*Item) []*Item {
	visible := c.Filter(items)
	SortByDate(visible)
	return visible
}

// SortByDate orders items newest first. Items whose date cannot be parsed
// compare as equal to everything, so their relative position is unspecified.
func SortByDate(items []*Item) {
	sort.SliceStable(items, func(a, b int) bool {
		left, lok := items[a].Date()
		right, rok := items[b].Date()
		if !lok || !rok {
			return false
		}
		return left.After(right)
	})
}
