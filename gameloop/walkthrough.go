package gameloop

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// walkthroughDoc is the keyed YAML form of a walkthrough file.
type walkthroughDoc struct {
	Game  string   `yaml:"game,omitempty"`
	Steps []string `yaml:"steps"`
}

// LoadWalkthrough reads an ordered list of known-optimal actions from a YAML
// file. Two forms are accepted: a bare sequence of actions, or a document
// with a "steps" sequence (and optional "game" label). The hints are surfaced
// to the prompt as guidance only; the loop never enforces them.
func LoadWalkthrough(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read walkthrough: %w", err)
	}
	return ParseWalkthrough(data)
}

// ParseWalkthrough decodes walkthrough YAML from memory.
func ParseWalkthrough(data []byte) ([]string, error) {
	var steps []string
	if err := yaml.Unmarshal(data, &steps); err == nil && len(steps) > 0 {
		return steps, nil
	}

	var doc walkthroughDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse walkthrough: %w", err)
	}
	if len(doc.Steps) == 0 {
		return nil, fmt.Errorf("walkthrough has no steps")
	}
	return doc.Steps, nil
}
