package storage

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// pageKey is the sort position of the last entry on a page. Clients
// receive it base64-encoded and must return it as-is.
type pageKey struct {
	CreatedAt int64  `json:"created_at"`
	EntryID   string `json:"entry_id"`
}

// EncodeCursor builds an opaque continuation token from an entry's
// sort position.
func EncodeCursor(createdAt time.Time, entryID string) string {
	raw, _ := json.Marshal(pageKey{
		CreatedAt: createdAt.UnixNano(),
		EntryID:   entryID,
	})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor recovers the sort position from a token produced by
// EncodeCursor. Returns ErrInvalidCursor for anything else.
func DecodeCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", ErrInvalidCursor
	}
	var key pageKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return time.Time{}, "", ErrInvalidCursor
	}
	if key.EntryID == "" {
		return time.Time{}, "", ErrInvalidCursor
	}
	return time.Unix(0, key.CreatedAt).UTC(), key.EntryID, nil
}
