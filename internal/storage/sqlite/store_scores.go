package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "github.com/pipe-works/pipeworks-mud-server-sub000/internal/errors"
)

// ReadCurrentScores returns the character's persisted axis scores.
// Axes the character has never been scored on are absent from the map.
func (s *Store) ReadCurrentScores(ctx context.Context, characterID int64) (map[string]float64, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT axis, score FROM character_axis_scores WHERE character_id = ?`,
		characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]float64)
	for rows.Next() {
		var axis string
		var score float64
		if err := rows.Scan(&axis, &score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores[axis] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return scores, nil
}

// ApplyEvent atomically applies a named score event to one character.
//
// Every delta axis must exist in the world's axis registry; unknown axes
// reject the whole event rather than being silently dropped. Score rows are
// created at the configured default the first time an axis is touched, and
// updated scores are clamped to [0,1]. One score_events row plus one
// score_event_deltas row per axis is recorded, and the denormalized
// axis_snapshots view is refreshed, all inside a single transaction.
func (s *Store) ApplyEvent(ctx context.Context, worldID string, characterID int64, eventType, eventDescription string, deltas map[string]float64, metadata map[string]any) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	worldID = strings.TrimSpace(worldID)
	if worldID == "" {
		return 0, apperrors.New(apperrors.CodeAxisEmptyWorldID, "world id is required")
	}
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return 0, fmt.Errorf("event type is required")
	}
	if len(deltas) == 0 {
		return 0, apperrors.New(apperrors.CodeAxisDeltasEmpty, "score event requires at least one axis delta")
	}

	axes := make([]string, 0, len(deltas))
	for axis := range deltas {
		axes = append(axes, axis)
	}
	sort.Strings(axes)

	metadataJSON := []byte("{}")
	if len(metadata) > 0 {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			return 0, fmt.Errorf("encode metadata: %w", err)
		}
		metadataJSON = encoded
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, axis := range axes {
		var exists int
		row := tx.QueryRowContext(
			ctx,
			`SELECT 1 FROM axes WHERE world_id = ? AND name = ?`,
			worldID,
			axis,
		)
		if err := row.Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return 0, apperrors.WithMetadata(
					apperrors.CodeAxisUnknown,
					"axis is not registered for world",
					map[string]string{"axis": axis, "world_id": worldID},
				)
			}
			return 0, fmt.Errorf("check axis %s: %w", axis, err)
		}
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(
		ctx,
		`INSERT INTO score_events (world_id, character_id, event_type, event_description, metadata_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		worldID,
		characterID,
		eventType,
		eventDescription,
		string(metadataJSON),
		toMillis(now),
	)
	if err != nil {
		return 0, fmt.Errorf("insert score event: %w", err)
	}
	eventID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("score event id: %w", err)
	}

	for _, axis := range axes {
		oldScore := s.defaultScore
		row := tx.QueryRowContext(
			ctx,
			`SELECT score FROM character_axis_scores WHERE character_id = ? AND axis = ?`,
			characterID,
			axis,
		)
		if err := row.Scan(&oldScore); err != nil && err != sql.ErrNoRows {
			return 0, fmt.Errorf("read score %s: %w", axis, err)
		}

		newScore := clampScore(oldScore + deltas[axis])

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO character_axis_scores (character_id, axis, score, updated_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT (character_id, axis) DO UPDATE SET score = excluded.score, updated_at = excluded.updated_at`,
			characterID,
			axis,
			newScore,
			toMillis(now),
		); err != nil {
			return 0, fmt.Errorf("update score %s: %w", axis, err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO score_event_deltas (event_id, axis, old_score, new_score, delta)
			 VALUES (?, ?, ?, ?, ?)`,
			eventID,
			axis,
			oldScore,
			newScore,
			newScore-oldScore,
		); err != nil {
			return 0, fmt.Errorf("record delta %s: %w", axis, err)
		}

		label, err := s.axisLabel(ctx, worldID, axis, newScore)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO axis_snapshots (character_id, axis, score, label, refreshed_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (character_id, axis) DO UPDATE SET score = excluded.score, label = excluded.label, refreshed_at = excluded.refreshed_at`,
			characterID,
			axis,
			newScore,
			label,
			toMillis(now),
		); err != nil {
			return 0, fmt.Errorf("refresh snapshot %s: %w", axis, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit score event: %w", err)
	}
	return eventID, nil
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
