package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"doomsday-orchestrator/core/guestbook"
	"doomsday-orchestrator/core/orchestrator"
	"doomsday-orchestrator/core/storage"
	"doomsday-orchestrator/core/validation"

	"go.uber.org/zap"
)

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps the error taxonomy onto HTTP statuses: validation
// and bad cursors are 400, a missing session is 401, unknown keys are
// 404, rejected resubmission is 409, everything else is a 500.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var vErr *validation.Error
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request", Details: vErr.Fields})
	case errors.Is(err, guestbook.ErrUnknownEmoji):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request", Details: []string{"unknown emoji"}})
	case errors.Is(err, storage.ErrInvalidCursor):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request", Details: []string{"invalid last_key"}})
	case errors.Is(err, orchestrator.ErrMissingSession):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Missing session"})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	case errors.Is(err, orchestrator.ErrResubmitRejected):
		writeJSON(w, http.StatusConflict, errorBody{Error: "Analysis already in progress"})
	default:
		log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
	}
}
