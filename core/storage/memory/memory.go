// Package memory provides an in-process store backend for tests and
// local development. All operations are mutex-guarded and reads return
// deep copies, so repeated reads between writes are byte-stable.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"doomsday-orchestrator/core/models"
	"doomsday-orchestrator/core/storage"
)

// Store implements storage.JobStore and storage.GuestbookStore.
type Store struct {
	mu      sync.Mutex
	jobs    map[string]*models.AnalysisJob
	entries []*models.GuestbookEntry // insertion order, created_at non-decreasing
	byID    map[string]*models.GuestbookEntry
	lastAt  time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		jobs: make(map[string]*models.AnalysisJob),
		byID: make(map[string]*models.GuestbookEntry),
	}
}

func (s *Store) PutJob(_ context.Context, job *models.AnalysisJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.SessionID] = copyJob(job)
	return nil
}

func (s *Store) GetJob(_ context.Context, sessionID string) (*models.AnalysisJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[sessionID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyJob(job), nil
}

func (s *Store) CompleteJob(_ context.Context, sessionID string, verdict *models.Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[sessionID]
	if !ok {
		return storage.ErrNotFound
	}
	// Status and verdict flip together under the lock so no reader can
	// observe one without the other.
	job.Status = models.JobStatusCompleted
	job.Verdict = copyVerdict(verdict)
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) FailJob(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[sessionID]
	if !ok {
		return storage.ErrNotFound
	}
	job.Status = models.JobStatusError
	job.Verdict = nil
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) AppendEntry(_ context.Context, entry *models.GuestbookEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := copyEntry(entry)
	// Keep created_at strictly increasing so the (created_at, entry_id)
	// sort position is unambiguous under rapid appends.
	if !stored.CreatedAt.After(s.lastAt) {
		stored.CreatedAt = s.lastAt.Add(time.Nanosecond)
	}
	s.lastAt = stored.CreatedAt
	entry.CreatedAt = stored.CreatedAt
	s.entries = append(s.entries, stored)
	s.byID[stored.EntryID] = stored
	return nil
}

func (s *Store) ListEntries(_ context.Context, limit int, cursor string) ([]*models.GuestbookEntry, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Newest first. Entries are held oldest-first with strictly
	// increasing created_at, so the cursor position reduces to a time
	// comparison and the page is a backwards walk.
	start := len(s.entries) - 1
	if cursor != "" {
		at, _, err := storage.DecodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		start = sort.Search(len(s.entries), func(i int) bool {
			return !s.entries[i].CreatedAt.Before(at)
		}) - 1
	}

	var page []*models.GuestbookEntry
	i := start
	for ; i >= 0 && len(page) < limit; i-- {
		page = append(page, copyEntry(s.entries[i]))
	}

	next := ""
	if i >= 0 && len(page) > 0 {
		last := page[len(page)-1]
		next = storage.EncodeCursor(last.CreatedAt, last.EntryID)
	}
	return page, next, nil
}

func (s *Store) AddReaction(_ context.Context, entryID, emoji string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.byID[entryID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if entry.Reactions == nil {
		entry.Reactions = make(map[string]int)
	}
	entry.Reactions[emoji]++
	return copyReactions(entry.Reactions), nil
}

func copyJob(job *models.AnalysisJob) *models.AnalysisJob {
	out := *job
	out.Verdict = copyVerdict(job.Verdict)
	return &out
}

func copyVerdict(v *models.Verdict) *models.Verdict {
	if v == nil {
		return nil
	}
	out := *v
	out.SkillRisks = append([]models.SkillRisk(nil), v.SkillRisks...)
	out.CareerCards = make([]models.CareerCard, len(v.CareerCards))
	for i, card := range v.CareerCards {
		out.CareerCards[i] = card
		out.CareerCards[i].Roadmap = append([]models.RoadmapStep(nil), card.Roadmap...)
	}
	return &out
}

func copyEntry(e *models.GuestbookEntry) *models.GuestbookEntry {
	out := *e
	out.Reactions = copyReactions(e.Reactions)
	return &out
}

func copyReactions(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
