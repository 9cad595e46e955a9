package fetcher

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

// Text codes for fetch failures.
const (
	TextCodeCollectionUnknown = "COLLECTION_UNKNOWN"
	TextCodeItemFetchFailed   = "ITEM_FETCH_FAILED"
	TextCodeItemParseFailed   = "ITEM_PARSE_FAILED"
	TextCodeItemSchemaInvalid = "ITEM_SCHEMA_INVALID"
)

func unknownCollectionError(name string) *goerrors.Error {
	return goerrors.New(fmt.Sprintf("unknown collection %q", name), goerrors.CategoryBadInput).
		WithTextCode(TextCodeCollectionUnknown).
		WithMetadata(map[string]any{"collection": name})
}

func itemError(err error, code, collection string, entry interfaces.SourceEntry) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, fmt.Sprintf("%s/%s", collection, entry.Name)).
		WithTextCode(code).
		WithMetadata(map[string]any{
			"collection": collection,
			"file":       entry.Name,
			"path":       entry.Path,
			"sha":        entry.SHA,
		})
}
