package models

import "fmt"

// Verdict is the completed analysis payload: a countdown until the
// current occupation becomes obsolete, per-skill risk scores, and
// three career suggestion cards.
type Verdict struct {
	DDay        int          `json:"dday"`
	SkillRisks  []SkillRisk  `json:"skill_risks"`
	CareerCards []CareerCard `json:"career_cards"`
}

// SkillRisk scores one skill's replacement risk
type SkillRisk struct {
	SkillName       string `json:"skill_name"`
	Category        string `json:"category,omitempty"`
	ReplacementProb int    `json:"replacement_prob"`
	TimeHorizon     int    `json:"time_horizon"`
	Justification   string `json:"justification"`
}

// CareerCard is one suggested career transition with its roadmap
type CareerCard struct {
	CardIndex    int           `json:"card_index"`
	ComboFormula string        `json:"combo_formula"`
	Reason       string        `json:"reason"`
	Roadmap      []RoadmapStep `json:"roadmap"`
}

// RoadmapStep is one stage of a career card's transition plan
type RoadmapStep struct {
	Step     string `json:"step"`
	Duration string `json:"duration"`
}

const (
	minSkillRisks   = 3
	maxSkillRisks   = 5
	wantCareerCards = 3
)

// Validate checks the verdict against the required shape. A verdict
// that fails validation must be treated as an engine failure, never
// persisted partially.
func (v *Verdict) Validate() error {
	if v == nil {
		return fmt.Errorf("verdict is nil")
	}
	if v.DDay < 0 {
		return fmt.Errorf("dday must be >= 0, got %d", v.DDay)
	}
	if n := len(v.SkillRisks); n < minSkillRisks || n > maxSkillRisks {
		return fmt.Errorf("expected %d-%d skill risks, got %d", minSkillRisks, maxSkillRisks, n)
	}
	if n := len(v.CareerCards); n != wantCareerCards {
		return fmt.Errorf("expected exactly %d career cards, got %d", wantCareerCards, n)
	}
	for _, card := range v.CareerCards {
		if card.CardIndex < 0 || card.CardIndex > wantCareerCards-1 {
			return fmt.Errorf("card_index out of range: %d", card.CardIndex)
		}
	}
	return nil
}
