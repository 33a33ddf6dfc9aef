package resolution

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// computeFingerprint hashes the pre-interaction state for replay
// correlation. It is a pure function of the world, both identities, the
// channel, the active-axis snapshot, and the grammar version: identical
// inputs always produce the identical fingerprint. Map keys serialize in
// sorted order, so snapshot insertion order cannot affect the hash.
func computeFingerprint(worldID string, speakerID, listenerID int64, channel string, snapshot Snapshot, grammarVersion string) (string, error) {
	body := map[string]any{
		"world_id":    worldID,
		"speaker_id":  speakerID,
		"listener_id": listenerID,
		"channel":     channel,
		"snapshot": map[string]any{
			"speaker":  snapshot.Speaker,
			"listener": snapshot.Listener,
		},
		"grammar_version": grammarVersion,
	}
	canonical, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal fingerprint body: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
