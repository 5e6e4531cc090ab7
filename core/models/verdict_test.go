package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validVerdict() *Verdict {
	return &Verdict{
		DDay: 3,
		SkillRisks: []SkillRisk{
			{SkillName: "a", ReplacementProb: 90, TimeHorizon: 2, Justification: "x"},
			{SkillName: "b", ReplacementProb: 50, TimeHorizon: 5, Justification: "y"},
			{SkillName: "c", ReplacementProb: 10, TimeHorizon: 9, Justification: "z"},
		},
		CareerCards: []CareerCard{
			{CardIndex: 0, ComboFormula: "f0", Reason: "r0"},
			{CardIndex: 1, ComboFormula: "f1", Reason: "r1"},
			{CardIndex: 2, ComboFormula: "f2", Reason: "r2"},
		},
	}
}

func TestVerdictValidate(t *testing.T) {
	assert.NoError(t, validVerdict().Validate())

	tests := []struct {
		name   string
		mutate func(*Verdict)
	}{
		{"negative dday", func(v *Verdict) { v.DDay = -1 }},
		{"too few risks", func(v *Verdict) { v.SkillRisks = v.SkillRisks[:2] }},
		{"too many risks", func(v *Verdict) {
			v.SkillRisks = append(v.SkillRisks, v.SkillRisks...)
		}},
		{"missing card", func(v *Verdict) { v.CareerCards = v.CareerCards[:2] }},
		{"extra card", func(v *Verdict) {
			v.CareerCards = append(v.CareerCards, CareerCard{CardIndex: 0})
		}},
		{"card index out of range", func(v *Verdict) { v.CareerCards[1].CardIndex = 7 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validVerdict()
			tt.mutate(v)
			assert.Error(t, v.Validate())
		})
	}

	var nilVerdict *Verdict
	assert.Error(t, nilVerdict.Validate())
}
