package models

import "time"

// GuestbookEntry is one public note left by a visitor. Everything
// except the reaction counts is immutable after creation; each count
// only ever increases.
type GuestbookEntry struct {
	EntryID   string         `json:"entry_id"`
	CreatedAt time.Time      `json:"created_at"`
	SessionID string         `json:"session_id,omitempty"`
	JobTitle  string         `json:"job_title"`
	DDay      int            `json:"dday"`
	Message   string         `json:"message"`
	Reactions map[string]int `json:"reactions"`
}
