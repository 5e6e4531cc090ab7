// Package guestbook manages the public append-only log: posting
// entries, paging through them newest-first, and shared emoji
// reaction counters.
package guestbook

import (
	"context"
	"errors"
	"time"

	"doomsday-orchestrator/core/models"
	"doomsday-orchestrator/core/storage"
	"doomsday-orchestrator/core/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnknownEmoji is returned when a reaction uses a symbol outside
// the configured vocabulary.
var ErrUnknownEmoji = errors.New("unknown reaction emoji")

// DefaultEmojis is the reaction vocabulary used when none is configured.
var DefaultEmojis = []string{"😱", "💪", "🤖", "🔥"}

const (
	// DefaultLimit is the page size when the caller does not pick one.
	DefaultLimit = 20
	// MaxLimit caps the page size.
	MaxLimit = 100
)

// Manager is the guestbook write/read path over a GuestbookStore.
type Manager struct {
	store  storage.GuestbookStore
	emojis map[string]bool
	order  []string
	log    *zap.Logger
}

// NewManager creates a manager with the given reaction vocabulary.
// An empty vocabulary falls back to DefaultEmojis.
func NewManager(store storage.GuestbookStore, emojis []string, log *zap.Logger) *Manager {
	if len(emojis) == 0 {
		emojis = DefaultEmojis
	}
	known := make(map[string]bool, len(emojis))
	for _, e := range emojis {
		known[e] = true
	}
	return &Manager{store: store, emojis: known, order: emojis, log: log}
}

// Append creates a new immutable entry with a server-assigned id and
// timestamp and an all-zero reaction map.
func (m *Manager) Append(ctx context.Context, sessionID, jobTitle string, dday int, message string) (*models.GuestbookEntry, error) {
	err := validation.RequireNonEmpty(
		[]string{"session_id", "job_title", "message"},
		map[string]string{
			"session_id": sessionID,
			"job_title":  jobTitle,
			"message":    message,
		},
	)
	if err != nil {
		return nil, err
	}

	reactions := make(map[string]int, len(m.order))
	for _, e := range m.order {
		reactions[e] = 0
	}
	entry := &models.GuestbookEntry{
		EntryID:   uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		SessionID: sessionID,
		JobTitle:  jobTitle,
		DDay:      dday,
		Message:   message,
		Reactions: reactions,
	}
	if err := m.store.AppendEntry(ctx, entry); err != nil {
		return nil, err
	}
	m.log.Info("guestbook entry created", zap.String("entry_id", entry.EntryID))
	return entry, nil
}

// List returns up to limit entries newest-first, resuming after the
// cursor position. The limit is clamped to [1, MaxLimit]; zero or
// negative means DefaultLimit.
func (m *Manager) List(ctx context.Context, limit int, cursor string) ([]*models.GuestbookEntry, string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	entries, next, err := m.store.ListEntries(ctx, limit, cursor)
	if err != nil {
		return nil, "", err
	}
	for _, entry := range entries {
		entry.Reactions = m.normalize(entry.Reactions)
	}
	return entries, next, nil
}

// React atomically bumps one emoji counter and returns the full
// post-increment map.
func (m *Manager) React(ctx context.Context, entryID, emoji string) (map[string]int, error) {
	if !m.emojis[emoji] {
		return nil, ErrUnknownEmoji
	}
	reactions, err := m.store.AddReaction(ctx, entryID, emoji)
	if err != nil {
		return nil, err
	}
	return m.normalize(reactions), nil
}

// normalize fills vocabulary keys absent from stored maps with zero,
// so entries created before a vocabulary extension still answer for
// every known symbol.
func (m *Manager) normalize(reactions map[string]int) map[string]int {
	if reactions == nil {
		reactions = make(map[string]int, len(m.order))
	}
	for _, e := range m.order {
		if _, ok := reactions[e]; !ok {
			reactions[e] = 0
		}
	}
	return reactions
}
