package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodPayload = `{
	"dday": 3,
	"skill_risks": [
		{"skill_name": "a", "replacement_prob": 90, "time_horizon": 2, "justification": "x"},
		{"skill_name": "b", "replacement_prob": 50, "time_horizon": 5, "justification": "y"},
		{"skill_name": "c", "replacement_prob": 20, "time_horizon": 8, "justification": "z"},
		{"skill_name": "d", "replacement_prob": 10, "time_horizon": 9, "justification": "w"}
	],
	"career_cards": [
		{"card_index": 0, "combo_formula": "f0", "reason": "r0", "roadmap": [{"step": "s", "duration": "1mo"}]},
		{"card_index": 1, "combo_formula": "f1", "reason": "r1", "roadmap": []},
		{"card_index": 2, "combo_formula": "f2", "reason": "r2", "roadmap": []}
	]
}`

func TestParseVerdictPlainJSON(t *testing.T) {
	verdict, err := ParseVerdict(goodPayload)
	require.NoError(t, err)
	assert.Equal(t, 3, verdict.DDay)
	assert.Len(t, verdict.SkillRisks, 4)
	assert.Len(t, verdict.CareerCards, 3)
	assert.Equal(t, "1mo", verdict.CareerCards[0].Roadmap[0].Duration)
}

func TestParseVerdictFencedJSON(t *testing.T) {
	for _, raw := range []string{
		"```json\n" + goodPayload + "\n```",
		"```\n" + goodPayload + "\n```",
		"Here is the analysis:\n```json\n" + goodPayload + "\n```\nStay safe.",
	} {
		verdict, err := ParseVerdict(raw)
		require.NoError(t, err, "raw: %.40q", raw)
		assert.Equal(t, 3, verdict.DDay)
	}
}

func TestParseVerdictRejectsGarbage(t *testing.T) {
	_, err := ParseVerdict("the agent had a bad day")
	assert.Error(t, err)
}

func TestParseVerdictRejectsWrongShape(t *testing.T) {
	// Valid JSON, but only one skill risk: a shape failure, never a
	// partial verdict.
	_, err := ParseVerdict(`{
		"dday": 3,
		"skill_risks": [{"skill_name": "a"}],
		"career_cards": [{"card_index": 0}, {"card_index": 1}, {"card_index": 2}]
	}`)
	assert.Error(t, err)
}
