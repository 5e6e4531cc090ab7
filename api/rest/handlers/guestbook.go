package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"doomsday-orchestrator/core/guestbook"
	"doomsday-orchestrator/core/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// GuestbookHandler handles guestbook HTTP requests
type GuestbookHandler struct {
	manager *guestbook.Manager
	log     *zap.Logger
}

// NewGuestbookHandler creates a new guestbook handler
func NewGuestbookHandler(manager *guestbook.Manager, log *zap.Logger) *GuestbookHandler {
	return &GuestbookHandler{manager: manager, log: log}
}

// PostEntryRequest represents the request to post an entry
type PostEntryRequest struct {
	SessionID string `json:"session_id"`
	JobTitle  string `json:"job_title"`
	DDay      int    `json:"dday"`
	Message   string `json:"message"`
}

// PostEntryResponse represents the response after posting an entry
type PostEntryResponse struct {
	EntryID   string    `json:"entry_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResponse represents one page of guestbook entries
type ListResponse struct {
	Items   []*models.GuestbookEntry `json:"items"`
	LastKey *string                  `json:"last_key"`
}

// ReactionRequest represents the request to add a reaction
type ReactionRequest struct {
	Emoji string `json:"emoji"`
}

// ReactionResponse represents the post-increment reaction counts
type ReactionResponse struct {
	Reactions map[string]int `json:"reactions"`
}

// Post handles POST /guestbook
func (h *GuestbookHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req PostEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request", Details: []string{"malformed JSON body"}})
		return
	}

	entry, err := h.manager.Append(r.Context(), req.SessionID, req.JobTitle, req.DDay, req.Message)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, PostEntryResponse{
		EntryID:   entry.EntryID,
		CreatedAt: entry.CreatedAt,
	})
}

// List handles GET /guestbook
func (h *GuestbookHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request", Details: []string{"invalid limit"}})
			return
		}
		limit = parsed
	}
	cursor := r.URL.Query().Get("last_key")

	items, next, err := h.manager.List(r.Context(), limit, cursor)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	resp := ListResponse{Items: items}
	if resp.Items == nil {
		resp.Items = []*models.GuestbookEntry{}
	}
	if next != "" {
		resp.LastKey = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

// React handles POST /guestbook/{id}/reaction
func (h *GuestbookHandler) React(w http.ResponseWriter, r *http.Request) {
	entryID := mux.Vars(r)["id"]

	var req ReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request", Details: []string{"malformed JSON body"}})
		return
	}

	reactions, err := h.manager.React(r.Context(), entryID, req.Emoji)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, ReactionResponse{Reactions: reactions})
}
