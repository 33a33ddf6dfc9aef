package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	apperrors "github.com/pipe-works/pipeworks-mud-server-sub000/internal/errors"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/id"
)

// Ledger appends checksummed events to per-world append-only files.
// The zero value is not usable; construct with New.
type Ledger struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	clock func() time.Time
	newID func() string
}

// New creates a ledger writing under the provided directory.
// The directory and per-world files are created lazily on first append.
func New(dir string) *Ledger {
	return &Ledger{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
		clock: time.Now,
		newID: id.New,
	}
}

// Path returns the ledger file path for a world.
func (l *Ledger) Path(worldID string) string {
	return filepath.Join(l.dir, sanitizeWorldID(worldID)+".ledger.jsonl")
}

// Append records one event for a world and returns the assigned event id.
//
// The envelope's event id and timestamp are assigned here; callers never
// supply them. The serialized envelope is written as a single
// newline-terminated line under the world's writer lock, and the file is
// flushed before the lock is released. An empty fingerprint is stored as
// null. Filesystem failures are returned as LEDGER_WRITE_FAILED domain
// errors wrapping the cause; validation failures are rejected before any
// I/O is attempted.
func (l *Ledger) Append(ctx context.Context, worldID, eventType string, data map[string]any, fingerprint string, meta map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(worldID) == "" {
		return "", apperrors.New(apperrors.CodeLedgerEmptyWorldID, "world id is required")
	}
	if strings.TrimSpace(eventType) == "" {
		return "", apperrors.New(apperrors.CodeLedgerEmptyEventType, "event type is required")
	}

	env := Envelope{
		EventID:       l.newID(),
		Timestamp:     l.clock().UTC(),
		WorldID:       worldID,
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		Meta:          meta,
		Data:          data,
	}
	if fingerprint != "" {
		env.Fingerprint = &fingerprint
	}

	canonical, err := canonicalBody(env)
	if err != nil {
		return "", err
	}
	env.Checksum = bodyChecksum(canonical)

	line, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	line = append(line, '\n')

	lock := l.worldLock(worldID)
	lock.Lock()
	defer lock.Unlock()

	if err := l.writeLine(worldID, line); err != nil {
		return "", apperrors.Wrap(apperrors.CodeLedgerWriteFailed, "append ledger event", err)
	}
	return env.EventID, nil
}

// writeLine appends one serialized envelope line and flushes it to disk.
// Callers must hold the world's writer lock.
func (l *Ledger) writeLine(worldID string, line []byte) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	file, err := os.OpenFile(l.Path(worldID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger file: %w", err)
	}
	if _, err := file.Write(line); err != nil {
		_ = file.Close()
		return fmt.Errorf("write ledger line: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("sync ledger file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close ledger file: %w", err)
	}
	return nil
}

// worldLock lazily creates-or-fetches the writer lock for a world.
// The pool map is guarded only during create-or-fetch, never during writes.
func (l *Ledger) worldLock(worldID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[worldID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[worldID] = lock
	}
	return lock
}

// sanitizeWorldID derives a stable, filesystem-safe file stem from a world id.
func sanitizeWorldID(worldID string) string {
	worldID = strings.ToLower(strings.TrimSpace(worldID))
	var b strings.Builder
	for _, r := range worldID {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
