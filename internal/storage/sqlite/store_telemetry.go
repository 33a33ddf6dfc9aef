package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/storage"
)

// AppendTelemetryEvent persists one operational telemetry event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	fieldsJSON := []byte("{}")
	if len(evt.Fields) > 0 {
		encoded, err := json.Marshal(evt.Fields)
		if err != nil {
			return fmt.Errorf("encode telemetry fields: %w", err)
		}
		fieldsJSON = encoded
	}

	if _, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO telemetry_events (timestamp, severity, component, message, fields_json)
		 VALUES (?, ?, ?, ?, ?)`,
		toMillis(evt.Timestamp),
		evt.Severity,
		evt.Component,
		evt.Message,
		string(fieldsJSON),
	); err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}
