// Package ledger implements the append-only, checksummed event ledger.
//
// The ledger is the authoritative record of resolved interactions: one
// newline-delimited JSON file per world, each line a self-describing
// envelope carrying its own checksum. Envelopes are never mutated after the
// append returns. Nothing else in the repository writes to ledger files.
//
// Serialization of writers is per world: the Ledger value owns one writer
// lock per world id, so appends for one world are strictly ordered by lock
// arrival while appends across worlds proceed independently.
package ledger
