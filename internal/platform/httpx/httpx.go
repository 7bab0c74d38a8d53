// Package httpx holds the JSON request/response helpers shared by the
// daemon's HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "worktrack/internal/platform/errors"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps application errors to status codes.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusOf(err), errorBody{Error: err.Error()})
}

func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrInvalidWindow),
		errors.Is(err, apperrors.ErrUnknownEvent):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrNoActiveSession):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrActiveSessionExists),
		errors.Is(err, apperrors.ErrNoOpenPause):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON reads a single JSON document from the request body. An empty
// body leaves v untouched.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: decode body: %v", apperrors.ErrInvalidInput, err)
	}
	return nil
}
