package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/pipe-works/pipeworks-mud-server-sub000/internal/errors"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/storage"
)

// CreateCharacter registers a character name within a world and returns it
// with the assigned numeric identity.
func (s *Store) CreateCharacter(ctx context.Context, worldID, name string) (storage.Character, error) {
	if s == nil || s.sqlDB == nil {
		return storage.Character{}, fmt.Errorf("storage is not configured")
	}
	worldID = strings.TrimSpace(worldID)
	if worldID == "" {
		return storage.Character{}, apperrors.New(apperrors.CodeCharacterEmptyWorld, "world id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.Character{}, apperrors.New(apperrors.CodeCharacterEmptyName, "character name is required")
	}

	createdAt := time.Now().UTC()
	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO characters (world_id, name, created_at) VALUES (?, ?, ?)`,
		worldID,
		name,
		toMillis(createdAt),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return storage.Character{}, apperrors.WithMetadata(
				apperrors.CodeCharacterNameTaken,
				"character name already exists in world",
				map[string]string{"name": name, "world_id": worldID},
			)
		}
		return storage.Character{}, fmt.Errorf("create character: %w", err)
	}

	characterID, err := result.LastInsertId()
	if err != nil {
		return storage.Character{}, fmt.Errorf("character id: %w", err)
	}
	return storage.Character{
		ID:        characterID,
		WorldID:   worldID,
		Name:      name,
		CreatedAt: createdAt,
	}, nil
}

// ResolveCharacter looks up a character by name within a world.
// The lookup is case-insensitive. Returns storage.ErrNotFound on a miss.
func (s *Store) ResolveCharacter(ctx context.Context, name, worldID string) (storage.Character, error) {
	if s == nil || s.sqlDB == nil {
		return storage.Character{}, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	worldID = strings.TrimSpace(worldID)
	if name == "" || worldID == "" {
		return storage.Character{}, storage.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, world_id, name, created_at
		 FROM characters
		 WHERE world_id = ? AND name = ? COLLATE NOCASE`,
		worldID,
		name,
	)

	var character storage.Character
	var createdAt int64
	if err := row.Scan(&character.ID, &character.WorldID, &character.Name, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return storage.Character{}, storage.ErrNotFound
		}
		return storage.Character{}, fmt.Errorf("resolve character: %w", err)
	}
	character.CreatedAt = fromMillis(createdAt)
	return character, nil
}

// ListWorlds returns the distinct world ids present in the axis registry.
func (s *Store) ListWorlds(ctx context.Context) ([]string, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT DISTINCT world_id FROM axes ORDER BY world_id`)
	if err != nil {
		return nil, fmt.Errorf("list worlds: %w", err)
	}
	defer rows.Close()

	var worlds []string
	for rows.Next() {
		var worldID string
		if err := rows.Scan(&worldID); err != nil {
			return nil, fmt.Errorf("scan world: %w", err)
		}
		worlds = append(worlds, worldID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate worlds: %w", err)
	}
	return worlds, nil
}
