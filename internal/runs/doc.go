// Package runs persists pipeline runs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, stuck-run recovery, and the status transitions of the publication
// state machine. A run captures the lint report, the ordered publication
// attempts, and the platform identifiers so every stage can resume from
// persisted state.
//
// Terminal rows are immutable: the store rejects updates to a run whose
// status is terminal. Operator retry goes through Reissue, which opens a
// fresh run for the same source instead of rewriting history.
package runs
