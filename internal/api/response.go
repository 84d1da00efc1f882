package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/zbirka/internal/archive"
	"github.com/erazemk/zbirka/internal/imaging"
	"github.com/erazemk/zbirka/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// commandError maps an archive error to a response. Unknown errors are
// logged and reported as 500.
func commandError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, archive.ErrSeriesNotFound),
		errors.Is(err, archive.ErrItemNotFound),
		errors.Is(err, archive.ErrPresetNotFound),
		errors.Is(err, archive.ErrNoHistory):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, archive.ErrInvalidField),
		errors.Is(err, archive.ErrUnknownCharacter),
		errors.Is(err, archive.ErrEmptyTitle),
		errors.Is(err, archive.ErrEmptyName),
		errors.Is(err, archive.ErrInvalidDate),
		errors.Is(err, archive.ErrInvalidSortMode),
		errors.Is(err, store.ErrInvalidSnapshot),
		errors.Is(err, store.ErrChecksumMismatch),
		errors.Is(err, imaging.ErrUnsupportedFormat):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		slog.Error("command failed", "method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// itemIndex parses the {idx} path segment.
func itemIndex(r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(r.PathValue("idx"))
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
