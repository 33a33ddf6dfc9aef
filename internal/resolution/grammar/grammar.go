// Package grammar defines the frozen resolution grammar: the per-channel
// multiplier table, per-axis resolver assignments, and thresholds the
// engine consults on every interaction. A grammar is loaded and validated
// once and never mutated for the engine's lifetime.
package grammar

import (
	"fmt"
	"sort"

	apperrors "github.com/pipe-works/pipeworks-mud-server-sub000/internal/errors"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/resolution/resolver"
)

// AxisRule assigns a resolver and base magnitude to one axis.
type AxisRule struct {
	Resolver  string  `yaml:"resolver"`
	Magnitude float64 `yaml:"magnitude"`
}

// Grammar is the complete resolution grammar for a deployment.
type Grammar struct {
	Version      string              `yaml:"version"`
	MinGap       float64             `yaml:"min_gap"`
	DefaultScore float64             `yaml:"default_score"`
	Channels     map[string]float64  `yaml:"channels"`
	Axes         map[string]AxisRule `yaml:"axes"`
}

// Validate checks the grammar for internal consistency.
func (g *Grammar) Validate() error {
	if g.Version == "" {
		return apperrors.New(apperrors.CodeGrammarEmptyVersion, "grammar version is required")
	}
	if g.MinGap < 0 || g.MinGap >= 1 {
		return apperrors.WithMetadata(
			apperrors.CodeGrammarInvalidGap,
			"min gap must be in [0, 1)",
			map[string]string{"min_gap": fmt.Sprintf("%v", g.MinGap)},
		)
	}
	if g.DefaultScore < 0 || g.DefaultScore > 1 {
		return apperrors.WithMetadata(
			apperrors.CodeGrammarInvalidMagnitude,
			"default score must be in [0, 1]",
			map[string]string{"default_score": fmt.Sprintf("%v", g.DefaultScore)},
		)
	}
	if len(g.Axes) == 0 {
		return apperrors.New(apperrors.CodeGrammarNoAxes, "grammar requires at least one axis")
	}
	for axis, rule := range g.Axes {
		if !resolver.Known(rule.Resolver) {
			return apperrors.WithMetadata(
				apperrors.CodeGrammarUnknownResolver,
				"axis references unknown resolver",
				map[string]string{"axis": axis, "resolver": rule.Resolver},
			)
		}
		if rule.Magnitude < 0 {
			return apperrors.WithMetadata(
				apperrors.CodeGrammarInvalidMagnitude,
				"axis magnitude must be non-negative",
				map[string]string{"axis": axis, "magnitude": fmt.Sprintf("%v", rule.Magnitude)},
			)
		}
	}
	for channel, multiplier := range g.Channels {
		if multiplier < 0 {
			return apperrors.WithMetadata(
				apperrors.CodeGrammarInvalidMagnitude,
				"channel multiplier must be non-negative",
				map[string]string{"channel": channel, "multiplier": fmt.Sprintf("%v", multiplier)},
			)
		}
	}
	return nil
}

// ChannelMultiplier returns the multiplier for a delivery channel.
func (g *Grammar) ChannelMultiplier(channel string) (float64, error) {
	multiplier, ok := g.Channels[channel]
	if !ok {
		return 0, apperrors.WithMetadata(
			apperrors.CodeGrammarUnknownChannel,
			"channel is not in the grammar",
			map[string]string{"channel": channel},
		)
	}
	return multiplier, nil
}

// AxisNames returns every grammar axis in sorted order.
func (g *Grammar) AxisNames() []string {
	names := make([]string, 0, len(g.Axes))
	for name := range g.Axes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ActiveAxisNames returns the sorted axes whose resolver can move scores.
// Axes configured as no_effect are excluded; they contribute nothing to
// fingerprints or deltas.
func (g *Grammar) ActiveAxisNames() []string {
	names := make([]string, 0, len(g.Axes))
	for name, rule := range g.Axes {
		if rule.Resolver != resolver.NameNoEffect {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
