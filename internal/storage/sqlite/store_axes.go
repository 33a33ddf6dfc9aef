package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "github.com/pipe-works/pipeworks-mud-server-sub000/internal/errors"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/storage"
)

// CreateAxis registers a trait axis for a world together with its ordered
// value labels. Labels map contiguous score ranges to display names; ranges
// are validated to stay inside [0,1] with min below max.
func (s *Store) CreateAxis(ctx context.Context, worldID, name string, values []storage.AxisValue) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	worldID = strings.TrimSpace(worldID)
	if worldID == "" {
		return apperrors.New(apperrors.CodeAxisEmptyWorldID, "world id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.New(apperrors.CodeAxisEmptyName, "axis name is required")
	}
	for _, value := range values {
		if value.Min < 0 || value.Max > 1 || value.Min >= value.Max {
			return apperrors.WithMetadata(
				apperrors.CodeAxisInvalidRange,
				"axis value range must satisfy 0 <= min < max <= 1",
				map[string]string{"axis": name, "label": value.Label},
			)
		}
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var position int
	row := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM axes WHERE world_id = ?`, worldID)
	if err := row.Scan(&position); err != nil {
		return fmt.Errorf("count axes: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO axes (world_id, name, position) VALUES (?, ?, ?)`,
		worldID,
		name,
		position,
	); err != nil {
		return fmt.Errorf("create axis: %w", err)
	}

	for i, value := range values {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO axis_values (world_id, axis, label, min_score, max_score, position)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			worldID,
			name,
			value.Label,
			value.Min,
			value.Max,
			i,
		); err != nil {
			return fmt.Errorf("create axis value %s: %w", value.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit axis: %w", err)
	}
	return nil
}

// ListAxes returns a world's registered axes in registration order.
func (s *Store) ListAxes(ctx context.Context, worldID string) ([]storage.Axis, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT world_id, name, position FROM axes WHERE world_id = ? ORDER BY position, name`,
		strings.TrimSpace(worldID),
	)
	if err != nil {
		return nil, fmt.Errorf("list axes: %w", err)
	}
	defer rows.Close()

	var axes []storage.Axis
	for rows.Next() {
		var axis storage.Axis
		if err := rows.Scan(&axis.WorldID, &axis.Name, &axis.Position); err != nil {
			return nil, fmt.Errorf("scan axis: %w", err)
		}
		axes = append(axes, axis)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate axes: %w", err)
	}
	return axes, nil
}

// axisLabel resolves the display label for a score on one axis.
// Returns an empty label when no range covers the score.
func (s *Store) axisLabel(ctx context.Context, worldID, axis string, score float64) (string, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT label FROM axis_values
		 WHERE world_id = ? AND axis = ? AND min_score <= ? AND max_score >= ?
		 ORDER BY position LIMIT 1`,
		worldID,
		axis,
		score,
		score,
	)
	var label string
	if err := row.Scan(&label); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("axis label: %w", err)
	}
	return label, nil
}
