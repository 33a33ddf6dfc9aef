// Package storage defines the persistence interfaces consumed by the
// resolution engine and the record types they exchange.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// Character is a playable or non-playable entity scoped to a world.
type Character struct {
	ID        int64
	WorldID   string
	Name      string
	CreatedAt time.Time
}

// Axis is a named trait dimension registered for a world.
type Axis struct {
	WorldID  string
	Name     string
	Position int
}

// AxisValue maps a numeric score range to a display label for one axis.
type AxisValue struct {
	Label string
	Min   float64
	Max   float64
}

// ScoreDelta records one axis movement inside an applied score event.
type ScoreDelta struct {
	Axis     string
	OldScore float64
	NewScore float64
	Delta    float64
}

// TelemetryEvent captures one operational event for diagnostics.
type TelemetryEvent struct {
	Timestamp time.Time
	Severity  string
	Component string
	Message   string
	Fields    map[string]string
}

// IdentityStore resolves character names to world-scoped identities.
type IdentityStore interface {
	// ResolveCharacter looks up a character by name within a world.
	// The lookup is case-insensitive. Returns ErrNotFound on a miss.
	ResolveCharacter(ctx context.Context, name, worldID string) (Character, error)
}

// ScoreStore reads and mutates per-character axis scores.
type ScoreStore interface {
	// ReadCurrentScores returns the character's persisted axis scores.
	// Axes the character has never been scored on are absent from the map.
	ReadCurrentScores(ctx context.Context, characterID int64) (map[string]float64, error)

	// ApplyEvent atomically applies a named score event to one character:
	// per-axis scores are updated, a history row is recorded, and the
	// denormalized label+score snapshot is refreshed. Deltas referencing
	// axes outside the world's axis registry are rejected, as are empty
	// delta maps. Returns the new event row id.
	ApplyEvent(ctx context.Context, worldID string, characterID int64, eventType, eventDescription string, deltas map[string]float64, metadata map[string]any) (int64, error)
}

// WorldStore enumerates worlds known to the store.
type WorldStore interface {
	ListWorlds(ctx context.Context) ([]string, error)
}

// TelemetryStore persists operational telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
}
