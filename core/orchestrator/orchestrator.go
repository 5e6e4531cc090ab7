// Package orchestrator owns the analysis job state machine: it accepts
// survey submissions, persists the job, and dispatches the analysis
// without blocking the caller.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"doomsday-orchestrator/core/engine"
	"doomsday-orchestrator/core/models"
	"doomsday-orchestrator/core/storage"
	"doomsday-orchestrator/core/validation"

	"go.uber.org/zap"
)

var (
	// ErrMissingSession is returned when no session id accompanies a
	// submission.
	ErrMissingSession = errors.New("missing session id")
	// ErrResubmitRejected is returned when resubmission is configured
	// off and the session's job is still analyzing.
	ErrResubmitRejected = errors.New("analysis already in progress for session")
)

var surveyFields = []string{"name", "job_title", "strengths", "hobbies"}

// Options tunes orchestrator behavior.
type Options struct {
	// RejectResubmit refuses a new submission while the session's
	// current job is still analyzing. Off by default: re-submission
	// replaces the job and resets it to analyzing.
	RejectResubmit bool
	// AnalysisTimeout bounds one engine invocation.
	AnalysisTimeout time.Duration
}

// Orchestrator coordinates submissions, the engine, and the job store.
type Orchestrator struct {
	jobs   storage.JobStore
	engine engine.Engine
	opts   Options
	log    *zap.Logger
}

// New creates an orchestrator.
func New(jobs storage.JobStore, eng engine.Engine, opts Options, log *zap.Logger) *Orchestrator {
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = 2 * time.Minute
	}
	return &Orchestrator{jobs: jobs, engine: eng, opts: opts, log: log}
}

// Submit validates the survey, persists a job in status analyzing and
// triggers exactly one analysis attempt. The call returns as soon as
// the job is persisted; analysis runs detached.
func (o *Orchestrator) Submit(ctx context.Context, sessionID string, survey models.Survey) (*models.AnalysisJob, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}
	err := validation.RequireNonEmpty(surveyFields, map[string]string{
		"name":      survey.Name,
		"job_title": survey.JobTitle,
		"strengths": survey.Strengths,
		"hobbies":   survey.Hobbies,
	})
	if err != nil {
		return nil, err
	}

	if o.opts.RejectResubmit {
		existing, err := o.jobs.GetJob(ctx, sessionID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if existing != nil && existing.Status == models.JobStatusAnalyzing {
			return nil, ErrResubmitRejected
		}
	}

	now := time.Now().UTC()
	job := &models.AnalysisJob{
		SessionID: sessionID,
		Survey:    survey,
		Status:    models.JobStatusAnalyzing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := o.jobs.PutJob(ctx, job); err != nil {
		return nil, err
	}
	o.log.Info("survey accepted", zap.String("session_id", sessionID))

	// Fire and forget. The analysis outlives the request, so it runs
	// on a fresh context; an abandoned client never cancels it.
	go o.runAnalysis(sessionID, survey)

	return job, nil
}

// GetStatus returns the persisted job verbatim.
func (o *Orchestrator) GetStatus(ctx context.Context, sessionID string) (*models.AnalysisJob, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}
	return o.jobs.GetJob(ctx, sessionID)
}

// runAnalysis is the single completion path for one triggered attempt.
// Whatever happens, the job ends terminal: completed with a full
// verdict, or error with none.
func (o *Orchestrator) runAnalysis(sessionID string, survey models.Survey) {
	ctx, cancel := context.WithTimeout(context.Background(), o.opts.AnalysisTimeout)
	defer cancel()

	verdict, err := o.engine.Analyze(ctx, survey)
	if err == nil {
		err = verdict.Validate()
	}

	// The completion write gets its own context: the analysis context
	// may already be expired, and the terminal transition must still
	// be recorded.
	writeCtx, writeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer writeCancel()

	if err != nil {
		o.log.Warn("analysis failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		if failErr := o.jobs.FailJob(writeCtx, sessionID); failErr != nil {
			o.log.Error("failed to record analysis error",
				zap.String("session_id", sessionID),
				zap.Error(failErr))
		}
		return
	}

	if err := o.jobs.CompleteJob(writeCtx, sessionID, verdict); err != nil {
		o.log.Error("failed to persist verdict",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return
	}
	o.log.Info("analysis completed",
		zap.String("session_id", sessionID),
		zap.Int("dday", verdict.DDay))
}
