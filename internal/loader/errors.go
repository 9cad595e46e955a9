package loader

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// ErrSuperseded reports that a load finished after a newer load had already
// committed, so its content was discarded.
var ErrSuperseded = errors.New("loader: load superseded by a newer generation")

// ErrStopped is returned by operations on a stopped service.
var ErrStopped = errors.New("loader: service stopped")

const (
	TextCodeLoadFailed   = "CONTENT_LOAD_FAILED"
	TextCodeRenderFailed = "CONTENT_RENDER_FAILED"
)

func loadError(err error, trigger Trigger, generation uint64) error {
	category := goerrors.CategoryExternal
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		category = rich.Category
	}
	return goerrors.Wrap(err, category, "content load failed").
		WithTextCode(TextCodeLoadFailed).
		WithMetadata(map[string]any{
			"trigger":    string(trigger),
			"generation": generation,
		})
}

func renderError(err error, collection string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "render collection").
		WithTextCode(TextCodeRenderFailed).
		WithMetadata(map[string]any{"collection": collection})
}
