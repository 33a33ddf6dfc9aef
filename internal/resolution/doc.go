// Package resolution orchestrates mechanical interaction resolution: it
// resolves participant identities, serializes the read-compute-write cycle
// per character, computes axis deltas through the resolver registry, records
// the authoritative ledger event, and materializes deltas into the score
// store.
//
// The ledger write is authoritative and the store write is best-effort
// materialization, with deliberately asymmetric failure handling: a failed
// ledger append is logged and resolution continues, while a failed store
// write is reported at higher severity because it leaves the queryable view
// behind the ledger record. Neither failure aborts the resolution; both are
// surfaced on the returned result's write report.
package resolution
