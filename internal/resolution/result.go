package resolution

// EventTypeMechanicalResolution is the ledger event type recorded for every
// resolved interaction.
const EventTypeMechanicalResolution = "interaction.mechanical_resolution"

// negligibleDelta is the threshold below which an actual delta is treated
// as zero and excluded from results and ledger events.
const negligibleDelta = 1e-12

// AxisDelta records one axis movement for one participant.
type AxisDelta struct {
	Axis     string
	OldScore float64
	NewScore float64
	Delta    float64
}

// EntityResolution captures one participant's outcome.
type EntityResolution struct {
	CharacterID int64
	Name        string
	Deltas      []AxisDelta
}

// WriteState classifies the outcome of one write target.
type WriteState string

const (
	// WriteApplied means the write completed.
	WriteApplied WriteState = "applied"
	// WriteFailed means the write was attempted and failed; the failure was
	// absorbed rather than aborting the resolution.
	WriteFailed WriteState = "failed"
	// WriteSkipped means there was nothing to write.
	WriteSkipped WriteState = "skipped"
)

// WriteOutcome reports one write target's state and failure cause, if any.
type WriteOutcome struct {
	State WriteState
	Err   error
}

// WriteReport surfaces the two-phase write protocol's outcomes so callers
// can observe degraded writes without errors crossing the call boundary.
type WriteReport struct {
	Ledger   WriteOutcome
	Speaker  WriteOutcome
	Listener WriteOutcome
}

// Snapshot is the pre-interaction state over active axes for both parties.
type Snapshot struct {
	Speaker  map[string]float64
	Listener map[string]float64
}

// Result is the immutable outcome of one resolved interaction. It is never
// persisted; the ledger event is the persisted form.
type Result struct {
	Fingerprint    string
	WorldID        string
	Channel        string
	GrammarVersion string
	Speaker        EntityResolution
	Listener       EntityResolution
	Snapshot       Snapshot
	LedgerEventID  string
	Writes         WriteReport
}
