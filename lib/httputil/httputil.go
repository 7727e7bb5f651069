// Package httputil carries the json plumbing shared by the http
// surfaces of the services.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func WriteJson(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "path", r.URL.Path, "err", err)
	}
}

type errorPayload struct {
	Error string `json:"error"`
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, err error) {
	slog.ErrorContext(r.Context(), "request failed",
		"path", r.URL.Path,
		"status", status,
		"err", err,
	)
	WriteJson(w, r, status, errorPayload{Error: err.Error()})
}

// ReadJson decodes a request body the same way every handler does.
func ReadJson[T any](r *http.Request) (T, error) {
	var body T
	err := json.NewDecoder(r.Body).Decode(&body)
	return body, err
}
