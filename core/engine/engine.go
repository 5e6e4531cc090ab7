// Package engine defines the analysis engine boundary. The engine is
// a black box: given a survey it eventually produces a verdict or
// fails. Latency is unbounded, so callers must invoke it off the
// request path.
package engine

import (
	"context"

	"doomsday-orchestrator/core/models"
)

// Engine produces a verdict for a survey.
type Engine interface {
	Analyze(ctx context.Context, survey models.Survey) (*models.Verdict, error)
}
