package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// SchemaVersion is the envelope schema this package reads and writes.
// Readers reject envelopes carrying any other version.
const SchemaVersion = 1

// checksumPrefix identifies the hash algorithm in stored checksums.
const checksumPrefix = "sha256:"

// Envelope is the durable form of one ledger event. Fields are fixed;
// event-specific content lives in Data and free-form context in Meta.
type Envelope struct {
	EventID       string         `json:"event_id"`
	Timestamp     time.Time      `json:"timestamp"`
	WorldID       string         `json:"world_id"`
	EventType     string         `json:"event_type"`
	SchemaVersion int            `json:"schema_version"`
	Fingerprint   *string        `json:"fingerprint"`
	Meta          map[string]any `json:"meta"`
	Data          map[string]any `json:"data"`
	Checksum      string         `json:"checksum"`
}

// canonicalBody serializes the envelope minus its checksum into a canonical
// byte form. The body is normalized through a JSON round-trip so that maps,
// numbers, and timestamps reduce to the same representation whether they
// come from in-memory values at append time or from a parsed line at verify
// time; Go's JSON encoder then emits map keys in sorted order at every
// nesting level, making the result independent of key insertion order.
func canonicalBody(env Envelope) ([]byte, error) {
	body := map[string]any{
		"event_id":       env.EventID,
		"timestamp":      env.Timestamp,
		"world_id":       env.WorldID,
		"event_type":     env.EventType,
		"schema_version": env.SchemaVersion,
		"fingerprint":    env.Fingerprint,
		"meta":           env.Meta,
		"data":           env.Data,
	}
	return canonicalize(body)
}

// canonicalBodyFromRaw is the verify-side counterpart of canonicalBody,
// operating on a parsed envelope line with the checksum field removed.
func canonicalBodyFromRaw(raw map[string]any) ([]byte, error) {
	body := make(map[string]any, len(raw))
	for key, value := range raw {
		if key == "checksum" {
			continue
		}
		body[key] = value
	}
	return canonicalize(body)
}

func canonicalize(body map[string]any) ([]byte, error) {
	first, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope body: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(first, &normalized); err != nil {
		return nil, fmt.Errorf("normalize envelope body: %w", err)
	}
	canonical, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("canonicalize envelope body: %w", err)
	}
	return canonical, nil
}

// bodyChecksum computes the prefixed content hash over canonical body bytes.
func bodyChecksum(canonical []byte) string {
	sum := sha256.Sum256(canonical)
	return checksumPrefix + hex.EncodeToString(sum[:])
}
