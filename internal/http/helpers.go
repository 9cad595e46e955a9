package http

import (
	"encoding/json"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

type errorResponse struct {
	Error    string         `json:"error"`
	Message  string         `json:"message,omitempty"`
	TextCode string         `json:"text_code,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()}
	}

	payload := errorResponse{
		Message:  err.Error(),
		TextCode: rich.TextCode,
		Metadata: rich.Metadata,
	}
	switch rich.Category {
	case goerrors.CategoryNotFound:
		payload.Error = "not_found"
		return http.StatusNotFound, payload
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		payload.Error = "bad_request"
		return http.StatusBadRequest, payload
	case goerrors.CategoryExternal:
		payload.Error = "upstream_error"
		return http.StatusBadGateway, payload
	default:
		payload.Error = "internal_error"
		return http.StatusInternalServerError, payload
	}
}

// wantsHTML reports whether the caller is a browser form rather than an
// API client.
func wantsHTML(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
