package grammar

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultScoreFallback seeds unscored axes when the grammar omits
// default_score.
const defaultScoreFallback = 0.5

// Load reads and validates a grammar YAML file.
func Load(path string) (*Grammar, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grammar file: %w", err)
	}
	return Parse(content)
}

// Parse decodes and validates grammar YAML content.
func Parse(content []byte) (*Grammar, error) {
	var g Grammar
	if err := yaml.Unmarshal(content, &g); err != nil {
		return nil, fmt.Errorf("parse grammar yaml: %w", err)
	}
	if g.DefaultScore == 0 {
		g.DefaultScore = defaultScoreFallback
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}
