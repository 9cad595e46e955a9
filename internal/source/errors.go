package source

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// ErrNotFound reports a listing for a directory the source does not have.
// Fetchers treat it as an empty collection.
var ErrNotFound = errors.New("source: directory not found")

// Text codes attached to source errors.
const (
	TextCodeCollectionNotFound = "COLLECTION_NOT_FOUND"
	TextCodeAPIStatus          = "CONTENT_API_STATUS"
	TextCodeTransport          = "CONTENT_API_TRANSPORT"
	TextCodeReadFailed         = "CONTENT_READ_FAILED"
)

func notFoundError(dir string) error {
	return goerrors.Wrap(ErrNotFound, goerrors.CategoryNotFound, fmt.Sprintf("content folder %q not found", dir)).
		WithCode(http.StatusNotFound).
		WithTextCode(TextCodeCollectionNotFound).
		WithMetadata(map[string]any{"path": dir})
}

// statusError reports a non-success response from the content API. The
// HTTP status is kept in Code.
func statusError(operation, target string, status int) error {
	return goerrors.New(fmt.Sprintf("%s %s: content API error: %d", operation, target, status), goerrors.HTTPStatusToCategory(status)).
		WithCode(status).
		WithTextCode(TextCodeAPIStatus).
		WithMetadata(map[string]any{"target": target, "status": status})
}

func transportError(err error, operation, target string) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("%s %s", operation, target)).
		WithTextCode(TextCodeTransport).
		WithMetadata(map[string]any{"target": target})
}

func readError(err error, target string) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("read %s", target)).
		WithTextCode(TextCodeReadFailed).
		WithMetadata(map[string]any{"target": target})
}

// StatusCode returns the HTTP status carried by a source error, or 0.
func StatusCode(err error) int {
	var typed *goerrors.Error
	if goerrors.As(err, &typed) {
		return typed.Code
	}
	return 0
}
