package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"doomsday-orchestrator/core/models"
	"doomsday-orchestrator/core/storage"
)

func (s *Store) PutJob(ctx context.Context, job *models.AnalysisJob) error {
	query := `
		INSERT INTO analysis_jobs (
			session_id, name, job_title, strengths, hobbies, status, verdict, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NULL, $7, $8)
		ON CONFLICT (session_id) DO UPDATE SET
			name = EXCLUDED.name,
			job_title = EXCLUDED.job_title,
			strengths = EXCLUDED.strengths,
			hobbies = EXCLUDED.hobbies,
			status = EXCLUDED.status,
			verdict = NULL,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		job.SessionID,
		job.Survey.Name,
		job.Survey.JobTitle,
		job.Survey.Strengths,
		job.Survey.Hobbies,
		job.Status,
		job.CreatedAt.UTC(),
		job.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("put job: %w", err)
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, sessionID string) (*models.AnalysisJob, error) {
	query := `
		SELECT session_id, name, job_title, strengths, hobbies, status, verdict, created_at, updated_at
		FROM analysis_jobs
		WHERE session_id = $1
	`

	var job models.AnalysisJob
	var verdictJSON sql.NullString
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&job.SessionID,
		&job.Survey.Name,
		&job.Survey.JobTitle,
		&job.Survey.Strengths,
		&job.Survey.Hobbies,
		&job.Status,
		&verdictJSON,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	if verdictJSON.Valid {
		var verdict models.Verdict
		if err := json.Unmarshal([]byte(verdictJSON.String), &verdict); err != nil {
			return nil, fmt.Errorf("decode verdict: %w", err)
		}
		job.Verdict = &verdict
	}
	return &job, nil
}

// CompleteJob writes the verdict and the status flip in one UPDATE.
func (s *Store) CompleteJob(ctx context.Context, sessionID string, verdict *models.Verdict) error {
	raw, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}
	query := `UPDATE analysis_jobs SET status = $1, verdict = $2, updated_at = $3 WHERE session_id = $4`
	res, err := s.db.ExecContext(ctx, query, models.JobStatusCompleted, raw, time.Now().UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return requireRow(res)
}

func (s *Store) FailJob(ctx context.Context, sessionID string) error {
	query := `UPDATE analysis_jobs SET status = $1, verdict = NULL, updated_at = $2 WHERE session_id = $3`
	res, err := s.db.ExecContext(ctx, query, models.JobStatusError, time.Now().UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
