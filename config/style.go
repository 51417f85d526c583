package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ToneConversational = "conversational"
	ToneFormal         = "formal"
)

// CoverLetterStyle is the static writing-preferences document passed into the
// cover-letter tool. Loaded once at startup; never mutated afterwards.
type CoverLetterStyle struct {
	Tone          string   `yaml:"tone"`
	MaxWords      int      `yaml:"max_words"`
	BannedPhrases []string `yaml:"banned_phrases"`
	Structure     []string `yaml:"structure"`
	SignOff       string   `yaml:"sign_off"`
}

// DefaultCoverLetterStyle matches the preferences the product ships with.
func DefaultCoverLetterStyle() CoverLetterStyle {
	return CoverLetterStyle{
		Tone:     ToneConversational,
		MaxWords: 350,
		BannedPhrases: []string{
			"I am writing to express my interest",
			"dynamic team player",
			"think outside the box",
		},
		Structure: []string{
			"hook referencing the company",
			"two concrete achievements matched to the role",
			"closing with a direct ask",
		},
		SignOff: "Best regards",
	}
}

// LoadCoverLetterStyle reads a style document from a YAML file. An empty path
// returns the defaults.
func LoadCoverLetterStyle(path string) (CoverLetterStyle, error) {
	if path == "" {
		return DefaultCoverLetterStyle(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return CoverLetterStyle{}, fmt.Errorf("read style file: %w", err)
	}

	style := DefaultCoverLetterStyle()
	if err := yaml.Unmarshal(data, &style); err != nil {
		return CoverLetterStyle{}, fmt.Errorf("parse style file: %w", err)
	}
	if err := style.Validate(); err != nil {
		return CoverLetterStyle{}, err
	}
	return style, nil
}

func (s CoverLetterStyle) Validate() error {
	switch strings.ToLower(s.Tone) {
	case ToneConversational, ToneFormal:
	default:
		return fmt.Errorf("style tone %q: must be %s or %s", s.Tone, ToneConversational, ToneFormal)
	}
	if s.MaxWords <= 0 {
		return fmt.Errorf("style max_words must be positive, got %d", s.MaxWords)
	}
	return nil
}
