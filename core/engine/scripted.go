package engine

import (
	"context"
	"fmt"
	"time"

	"doomsday-orchestrator/core/models"
)

// ScriptedEngine produces a deterministic verdict derived from the
// survey, after a configurable delay. It stands in for the Bedrock
// agent when no agent is configured.
type ScriptedEngine struct {
	Delay time.Duration
}

// NewScripted creates a scripted engine with the given artificial latency.
func NewScripted(delay time.Duration) *ScriptedEngine {
	return &ScriptedEngine{Delay: delay}
}

func (e *ScriptedEngine) Analyze(ctx context.Context, survey models.Survey) (*models.Verdict, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(e.Delay):
	}

	dday := 3 + len(survey.JobTitle)%5
	verdict := &models.Verdict{
		DDay: dday,
		SkillRisks: []models.SkillRisk{
			{
				SkillName:       survey.JobTitle + " core duties",
				Category:        "automation",
				ReplacementProb: 85,
				TimeHorizon:     dday,
				Justification:   "Routine execution is the first thing the machines take.",
			},
			{
				SkillName:       "Domain judgment",
				Category:        "cognition",
				ReplacementProb: 60,
				TimeHorizon:     dday + 2,
				Justification:   "Pattern libraries grow faster than experience does.",
			},
			{
				SkillName:       survey.Strengths,
				Category:        "human",
				ReplacementProb: 30,
				TimeHorizon:     dday + 5,
				Justification:   "Still cheaper to keep a human for this. For now.",
			},
		},
		CareerCards: make([]models.CareerCard, 3),
	}
	for i := range verdict.CareerCards {
		verdict.CareerCards[i] = models.CareerCard{
			CardIndex:    i,
			ComboFormula: fmt.Sprintf("[%s] + [%s] + [%s] = [hybrid path %d]", survey.JobTitle, survey.Strengths, survey.Hobbies, i+1),
			Reason:       "Combines what you do with what the machines cannot be bothered to.",
			Roadmap: []models.RoadmapStep{
				{Step: "Audit which of your tasks survive automation", Duration: "1 month"},
				{Step: "Retrain around the surviving tasks", Duration: "6 months"},
				{Step: "Rebrand before the deadline", Duration: "3 months"},
			},
		}
	}
	return verdict, nil
}
