package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"hotelperf/server/internal/sentiment"
)

//go:embed lexicon.yaml
var defaultLexicon []byte

// lexiconFile mirrors the on-disk lexicon layout
type lexiconFile struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
	Negation []string `yaml:"negation"`
	Contrast []string `yaml:"contrast"`
}

// LoadLexicon reads the sentiment lexicon from path, or the embedded default when path is empty.
// It is meant to be called once at startup; the result is read-only.
func LoadLexicon(path string) (*sentiment.Lexicon, error) {
	data := defaultLexicon
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}

		data, err = os.ReadFile(absPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read lexicon file: %w", err)
		}
	}

	return ParseLexicon(data)
}

// ParseLexicon builds a lexicon from YAML
func ParseLexicon(data []byte) (*sentiment.Lexicon, error) {
	var file lexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}

	if len(file.Positive) == 0 || len(file.Negative) == 0 {
		return nil, fmt.Errorf("lexicon must define both positive and negative words")
	}

	return sentiment.NewLexicon(file.Positive, file.Negative, file.Negation, file.Contrast), nil
}
