package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// VerifyStatus classifies the outcome of a ledger verification pass.
type VerifyStatus string

const (
	// VerifyOK means the last event parses and its checksum matches.
	VerifyOK VerifyStatus = "ok"
	// VerifyEmpty means the world has no ledger file or no events.
	VerifyEmpty VerifyStatus = "empty"
	// VerifyCorrupt means the last event fails to parse or its checksum mismatches.
	VerifyCorrupt VerifyStatus = "corrupt"
)

// VerifyResult reports a verification outcome. It is diagnostic only and is
// never persisted; the caller decides whether a corrupt ledger halts startup.
type VerifyResult struct {
	Status      VerifyStatus
	LastEventID string
	Detail      string
}

// maxLineSize bounds a single envelope line during verification scans.
const maxLineSize = 1 << 20

// Verify inspects the last non-blank line of a world's ledger file.
//
// This is a cheap tail check, not a full replay: it detects a torn or
// tampered final write, which is the failure mode an unclean shutdown
// produces. Earlier lines are not revisited.
func (l *Ledger) Verify(worldID string) (VerifyResult, error) {
	if strings.TrimSpace(worldID) == "" {
		return VerifyResult{}, fmt.Errorf("world id is required")
	}

	file, err := os.Open(l.Path(worldID))
	if err != nil {
		if os.IsNotExist(err) {
			return VerifyResult{Status: VerifyEmpty}, nil
		}
		return VerifyResult{}, fmt.Errorf("open ledger file: %w", err)
	}
	defer file.Close()

	var lastLine string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lastLine = line
		}
	}
	if err := scanner.Err(); err != nil {
		return VerifyResult{}, fmt.Errorf("scan ledger file: %w", err)
	}
	if lastLine == "" {
		return VerifyResult{Status: VerifyEmpty}, nil
	}

	var env Envelope
	if err := json.Unmarshal([]byte(lastLine), &env); err != nil {
		return VerifyResult{
			Status: VerifyCorrupt,
			Detail: fmt.Sprintf("parse last event: %v", err),
		}, nil
	}
	if env.SchemaVersion != SchemaVersion {
		return VerifyResult{
			Status: VerifyCorrupt,
			Detail: fmt.Sprintf("unsupported schema version %d", env.SchemaVersion),
		}, nil
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(lastLine), &raw); err != nil {
		return VerifyResult{
			Status: VerifyCorrupt,
			Detail: fmt.Sprintf("parse last event: %v", err),
		}, nil
	}
	canonical, err := canonicalBodyFromRaw(raw)
	if err != nil {
		return VerifyResult{
			Status: VerifyCorrupt,
			Detail: fmt.Sprintf("canonicalize last event: %v", err),
		}, nil
	}
	if got := bodyChecksum(canonical); got != env.Checksum {
		return VerifyResult{
			Status: VerifyCorrupt,
			Detail: fmt.Sprintf("checksum mismatch for event %s", env.EventID),
		}, nil
	}

	return VerifyResult{Status: VerifyOK, LastEventID: env.EventID}, nil
}
