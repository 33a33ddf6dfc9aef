package resolution

import (
	"context"
	"errors"
	"fmt"
	"log"

	apperrors "github.com/pipe-works/pipeworks-mud-server-sub000/internal/errors"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/ledger"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/resolution/grammar"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/resolution/resolver"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/storage"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/telemetry"
)

// Engine resolves interactions against a frozen grammar.
type Engine struct {
	grammar   *grammar.Grammar
	identity  storage.IdentityStore
	scores    storage.ScoreStore
	ledger    *ledger.Ledger
	locks     *lockPool
	telemetry *telemetry.Emitter
}

// Option configures engine behavior.
type Option func(*Engine)

// WithTelemetry records degraded-write events through the emitter.
func WithTelemetry(emitter *telemetry.Emitter) Option {
	return func(e *Engine) {
		e.telemetry = emitter
	}
}

// NewEngine creates an engine over the provided collaborators.
func NewEngine(g *grammar.Grammar, identity storage.IdentityStore, scores storage.ScoreStore, l *ledger.Ledger, opts ...Option) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("grammar is required")
	}
	if identity == nil {
		return nil, fmt.Errorf("identity store is required")
	}
	if scores == nil {
		return nil, fmt.Errorf("score store is required")
	}
	if l == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	engine := &Engine{
		grammar:  g,
		identity: identity,
		scores:   scores,
		ledger:   l,
		locks:    newLockPool(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}
	return engine, nil
}

// Resolve runs one full resolution sequence for an interaction between a
// speaker and a listener over a delivery channel.
//
// The sequence is synchronous: identify, lock, read, fingerprint, compute,
// ledger write, materialize, release, return. Identity and channel failures
// abort before any lock is taken and are safely retryable. Ledger and store
// write failures never abort the sequence; they are logged, emitted as
// telemetry, and reported on the result's write report.
func (e *Engine) Resolve(ctx context.Context, worldID, speakerName, listenerName, channel string) (Result, error) {
	multiplier, err := e.grammar.ChannelMultiplier(channel)
	if err != nil {
		return Result{}, err
	}

	speaker, err := e.resolveCharacter(ctx, speakerName, worldID)
	if err != nil {
		return Result{}, err
	}
	listener, err := e.resolveCharacter(ctx, listenerName, worldID)
	if err != nil {
		return Result{}, err
	}

	// Locks are acquired in ascending character-ID order, the sole
	// deadlock-avoidance mechanism; deferred unlocks release in reverse.
	first, second := speaker.ID, listener.ID
	if first > second {
		first, second = second, first
	}
	e.locks.get(first).Lock()
	defer e.locks.get(first).Unlock()
	if second != first {
		e.locks.get(second).Lock()
		defer e.locks.get(second).Unlock()
	}

	speakerScores, err := e.readScores(ctx, speaker.ID)
	if err != nil {
		return Result{}, err
	}
	listenerScores, err := e.readScores(ctx, listener.ID)
	if err != nil {
		return Result{}, err
	}

	snapshot := e.snapshot(speakerScores, listenerScores)
	fingerprint, err := computeFingerprint(worldID, speaker.ID, listener.ID, channel, snapshot, e.grammar.Version)
	if err != nil {
		return Result{}, err
	}

	speakerDeltas, listenerDeltas := e.computeDeltas(speakerScores, listenerScores, multiplier)

	result := Result{
		Fingerprint:    fingerprint,
		WorldID:        worldID,
		Channel:        channel,
		GrammarVersion: e.grammar.Version,
		Speaker:        EntityResolution{CharacterID: speaker.ID, Name: speaker.Name, Deltas: speakerDeltas},
		Listener:       EntityResolution{CharacterID: listener.ID, Name: listener.Name, Deltas: listenerDeltas},
		Snapshot:       snapshot,
	}

	result.LedgerEventID, result.Writes.Ledger = e.writeLedger(ctx, result)
	result.Writes.Speaker = e.materialize(ctx, worldID, channel, fingerprint, result.LedgerEventID, result.Speaker)
	result.Writes.Listener = e.materialize(ctx, worldID, channel, fingerprint, result.LedgerEventID, result.Listener)

	return result, nil
}

// resolveCharacter maps a name to a world-scoped identity, converting a
// store miss into a caller-facing not-found error.
func (e *Engine) resolveCharacter(ctx context.Context, name, worldID string) (storage.Character, error) {
	character, err := e.identity.ResolveCharacter(ctx, name, worldID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Character{}, apperrors.WithMetadata(
				apperrors.CodeCharacterNotFound,
				"character not found in world",
				map[string]string{"name": name, "world_id": worldID},
			)
		}
		return storage.Character{}, fmt.Errorf("resolve character %s: %w", name, err)
	}
	return character, nil
}

// readScores loads current scores and fills grammar axes the character has
// never been scored on with the configured default.
func (e *Engine) readScores(ctx context.Context, characterID int64) (map[string]float64, error) {
	stored, err := e.scores.ReadCurrentScores(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("read scores for character %d: %w", characterID, err)
	}
	scores := make(map[string]float64, len(e.grammar.Axes))
	for _, axis := range e.grammar.AxisNames() {
		score, ok := stored[axis]
		if !ok {
			score = e.grammar.DefaultScore
		}
		scores[axis] = score
	}
	return scores, nil
}

// snapshot captures pre-interaction scores restricted to active axes.
func (e *Engine) snapshot(speakerScores, listenerScores map[string]float64) Snapshot {
	active := e.grammar.ActiveAxisNames()
	snap := Snapshot{
		Speaker:  make(map[string]float64, len(active)),
		Listener: make(map[string]float64, len(active)),
	}
	for _, axis := range active {
		snap.Speaker[axis] = speakerScores[axis]
		snap.Listener[axis] = listenerScores[axis]
	}
	return snap
}

// computeDeltas dispatches every grammar axis to its resolver, clamps the
// resulting scores to [0,1], and keeps only actual deltas above the
// negligible threshold. A party already at a bound pushed further past it
// yields an actual delta of exactly zero and is excluded.
func (e *Engine) computeDeltas(speakerScores, listenerScores map[string]float64, multiplier float64) ([]AxisDelta, []AxisDelta) {
	var speakerDeltas, listenerDeltas []AxisDelta
	for _, axis := range e.grammar.AxisNames() {
		rule := e.grammar.Axes[axis]
		oldSpeaker := speakerScores[axis]
		oldListener := listenerScores[axis]

		rawSpeaker, rawListener := resolver.Resolve(rule.Resolver, oldSpeaker, oldListener, rule.Magnitude, multiplier, e.grammar.MinGap)

		newSpeaker := clamp(oldSpeaker + rawSpeaker)
		newListener := clamp(oldListener + rawListener)

		if delta := newSpeaker - oldSpeaker; delta > negligibleDelta || delta < -negligibleDelta {
			speakerDeltas = append(speakerDeltas, AxisDelta{Axis: axis, OldScore: oldSpeaker, NewScore: newSpeaker, Delta: delta})
		}
		if delta := newListener - oldListener; delta > negligibleDelta || delta < -negligibleDelta {
			listenerDeltas = append(listenerDeltas, AxisDelta{Axis: axis, OldScore: oldListener, NewScore: newListener, Delta: delta})
		}
	}
	return speakerDeltas, listenerDeltas
}

// writeLedger appends the authoritative resolution event. Failures are
// absorbed: an audit-log outage must never block gameplay responsiveness.
func (e *Engine) writeLedger(ctx context.Context, result Result) (string, WriteOutcome) {
	data := map[string]any{
		"speaker":         ledgerParty(result.Speaker),
		"listener":        ledgerParty(result.Listener),
		"snapshot":        ledgerSnapshot(result.Snapshot),
		"grammar_version": result.GrammarVersion,
	}
	meta := map[string]any{"channel": result.Channel}

	eventID, err := e.ledger.Append(ctx, result.WorldID, EventTypeMechanicalResolution, data, result.Fingerprint, meta)
	if err != nil {
		log.Printf(
			"ledger append failed world_id=%s channel=%s fingerprint=%s error=%v",
			result.WorldID, result.Channel, result.Fingerprint, err,
		)
		e.emit(ctx, telemetry.SeverityWarn, "ledger append failed", map[string]string{
			"world_id":    result.WorldID,
			"fingerprint": result.Fingerprint,
		})
		return "", WriteOutcome{State: WriteFailed, Err: err}
	}
	return eventID, WriteOutcome{State: WriteApplied}
}

// materialize applies one party's actual deltas to the store as a single
// atomic event. Failures are absorbed but reported at higher severity than
// ledger failures: the materialized view now lags the written ledger
// record. One party's failure never blocks the other's update.
func (e *Engine) materialize(ctx context.Context, worldID, channel, fingerprint, ledgerEventID string, party EntityResolution) WriteOutcome {
	if len(party.Deltas) == 0 {
		return WriteOutcome{State: WriteSkipped}
	}

	deltas := make(map[string]float64, len(party.Deltas))
	for _, delta := range party.Deltas {
		deltas[delta.Axis] = delta.Delta
	}
	metadata := map[string]any{
		"channel":     channel,
		"fingerprint": fingerprint,
	}
	if ledgerEventID != "" {
		metadata["ledger_event_id"] = ledgerEventID
	}

	_, err := e.scores.ApplyEvent(ctx, worldID, party.CharacterID, EventTypeMechanicalResolution, "mechanical resolution over "+channel, deltas, metadata)
	if err != nil {
		log.Printf(
			"store apply failed world_id=%s character_id=%d fingerprint=%s error=%v",
			worldID, party.CharacterID, fingerprint, err,
		)
		e.emit(ctx, telemetry.SeverityError, "store apply failed", map[string]string{
			"world_id":     worldID,
			"character_id": fmt.Sprintf("%d", party.CharacterID),
			"fingerprint":  fingerprint,
		})
		return WriteOutcome{State: WriteFailed, Err: err}
	}
	return WriteOutcome{State: WriteApplied}
}

func (e *Engine) emit(ctx context.Context, severity telemetry.Severity, message string, fields map[string]string) {
	if err := e.telemetry.Emit(ctx, severity, "resolution", message, fields); err != nil {
		log.Printf("telemetry emit failed message=%q error=%v", message, err)
	}
}

func ledgerParty(party EntityResolution) map[string]any {
	deltas := make(map[string]any, len(party.Deltas))
	for _, delta := range party.Deltas {
		deltas[delta.Axis] = map[string]any{
			"old_score": delta.OldScore,
			"new_score": delta.NewScore,
			"delta":     delta.Delta,
		}
	}
	return map[string]any{
		"character_id": party.CharacterID,
		"name":         party.Name,
		"deltas":       deltas,
	}
}

func ledgerSnapshot(snapshot Snapshot) map[string]any {
	return map[string]any{
		"speaker":  snapshot.Speaker,
		"listener": snapshot.Listener,
	}
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
