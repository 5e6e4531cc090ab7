package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Presentation holds the display strings the polling client rotates
// through and the reaction emoji vocabulary. Both ship with compiled-in
// defaults and can be overridden from a YAML file.
type Presentation struct {
	LoadingMessages []string `yaml:"loading_messages"`
	ReactionEmojis  []string `yaml:"reaction_emojis"`
}

// DefaultPresentation returns the built-in strings.
func DefaultPresentation() *Presentation {
	return &Presentation{
		LoadingMessages: []string{
			"SCANNING SUBJECT DATA...",
			"CALCULATING DOOM INDEX...",
			"AI TRIBUNAL ANALYZING RECORDS...",
			"DOOMSDAY CLOCK CALIBRATING...",
			"SURVIVAL PROBABILITY COMPUTING...",
		},
		ReactionEmojis: []string{"😱", "💪", "🤖", "🔥"},
	}
}

// LoadPresentation reads the YAML file at path, falling back to the
// defaults for any field left empty. An empty path returns defaults.
func LoadPresentation(path string) (*Presentation, error) {
	pres := DefaultPresentation()
	if path == "" {
		return pres, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presentation config: %w", err)
	}
	var loaded Presentation
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return nil, fmt.Errorf("parse presentation config: %w", err)
	}
	if len(loaded.LoadingMessages) > 0 {
		pres.LoadingMessages = loaded.LoadingMessages
	}
	if len(loaded.ReactionEmojis) > 0 {
		pres.ReactionEmojis = loaded.ReactionEmojis
	}
	return pres, nil
}
