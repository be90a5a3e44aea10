package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sinln/newsletter/internal/logging"
	"github.com/sinln/newsletter/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError wraps any failure as a 400 envelope so the gateway in
// front never masks the message with a generic error page. Source
// carries the chained cause, or "none".
func writeError(ctx context.Context, w http.ResponseWriter, log logging.Logger, err error) {
	source := "none"
	if cause := errors.Unwrap(err); cause != nil {
		source = cause.Error()
	}
	log.Error(ctx, "request failed", "error", err.Error(), "source", source)
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
		Error:  err.Error(),
		Source: source,
	})
}
