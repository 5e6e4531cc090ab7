package storage

import (
	"context"
	"errors"

	"doomsday-orchestrator/core/models"
)

var (
	// ErrNotFound is returned when a key has no record.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCursor is returned when a page cursor cannot be decoded.
	ErrInvalidCursor = errors.New("invalid cursor")
)

// JobStore persists analysis jobs keyed by session id.
type JobStore interface {
	// PutJob creates or replaces the job for its session id with
	// status analyzing and no verdict.
	PutJob(ctx context.Context, job *models.AnalysisJob) error

	// GetJob returns the persisted job verbatim, or ErrNotFound.
	GetJob(ctx context.Context, sessionID string) (*models.AnalysisJob, error)

	// CompleteJob writes status=completed together with the verdict as
	// a single atomic transition. A reader must never observe
	// status=completed with a missing verdict.
	CompleteJob(ctx context.Context, sessionID string, verdict *models.Verdict) error

	// FailJob writes status=error with no verdict.
	FailJob(ctx context.Context, sessionID string) error
}

// GuestbookStore persists the append-only guestbook log.
type GuestbookStore interface {
	// AppendEntry inserts a new entry. Entry ids are server-assigned
	// and must not collide.
	AppendEntry(ctx context.Context, entry *models.GuestbookEntry) error

	// ListEntries returns up to limit entries ordered by created_at
	// descending, resuming after the position encoded by cursor when
	// one is given. The returned cursor is empty when the page reached
	// the oldest entry.
	ListEntries(ctx context.Context, limit int, cursor string) ([]*models.GuestbookEntry, string, error)

	// AddReaction atomically increments one emoji counter by one and
	// returns the full post-increment reaction map. Returns
	// ErrNotFound for an unknown entry id.
	AddReaction(ctx context.Context, entryID, emoji string) (map[string]int, error)
}
