package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"doomsday-orchestrator/core/models"
	"doomsday-orchestrator/core/storage"
)

func (s *Store) AppendEntry(ctx context.Context, entry *models.GuestbookEntry) error {
	reactions, err := json.Marshal(entry.Reactions)
	if err != nil {
		return fmt.Errorf("encode reactions: %w", err)
	}
	query := `
		INSERT INTO guestbook_entries (entry_id, created_at, session_id, job_title, dday, message, reactions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(ctx, query,
		entry.EntryID,
		entry.CreatedAt.UTC(),
		entry.SessionID,
		entry.JobTitle,
		entry.DDay,
		entry.Message,
		reactions,
	)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

// ListEntries pages newest-first with a keyset on (created_at,
// entry_id), so concurrent appends never shift an in-progress walk.
func (s *Store) ListEntries(ctx context.Context, limit int, cursor string) ([]*models.GuestbookEntry, string, error) {
	query := `
		SELECT entry_id, created_at, session_id, job_title, dday, message, reactions
		FROM guestbook_entries
	`
	args := []interface{}{}
	if cursor != "" {
		createdAt, entryID, err := storage.DecodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		query += ` WHERE (created_at, entry_id) < ($1, $2)`
		args = append(args, createdAt, entryID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, entry_id DESC LIMIT $%d`, len(args)+1)
	// One extra row tells us whether another page exists.
	args = append(args, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.GuestbookEntry
	for rows.Next() {
		var entry models.GuestbookEntry
		var reactionsJSON []byte
		err := rows.Scan(
			&entry.EntryID,
			&entry.CreatedAt,
			&entry.SessionID,
			&entry.JobTitle,
			&entry.DDay,
			&entry.Message,
			&reactionsJSON,
		)
		if err != nil {
			return nil, "", fmt.Errorf("scan entry: %w", err)
		}
		if err := json.Unmarshal(reactionsJSON, &entry.Reactions); err != nil {
			return nil, "", fmt.Errorf("decode reactions: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[limit-1]
		next = storage.EncodeCursor(last.CreatedAt, last.EntryID)
	}
	return entries, next, nil
}

// AddReaction increments one counter inside the reactions JSON map in
// a single UPDATE, so concurrent reactions cannot lose increments.
func (s *Store) AddReaction(ctx context.Context, entryID, emoji string) (map[string]int, error) {
	query := `
		UPDATE guestbook_entries
		SET reactions = jsonb_set(
			reactions,
			ARRAY[$2],
			(COALESCE((reactions ->> $2)::int, 0) + 1)::text::jsonb
		)
		WHERE entry_id = $1
		RETURNING reactions
	`
	var reactionsJSON []byte
	err := s.db.QueryRowContext(ctx, query, entryID, emoji).Scan(&reactionsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("add reaction: %w", err)
	}

	var reactions map[string]int
	if err := json.Unmarshal(reactionsJSON, &reactions); err != nil {
		return nil, fmt.Errorf("decode reactions: %w", err)
	}
	return reactions, nil
}
