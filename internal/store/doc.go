// Package store is the SQLite reference adapter for the engine's Committer.
//
// Tables:
//   - players: identity and eligibility, upserted on every commit
//   - roster_entries: current (team, player) state
//   - assignment_log: append-only history of commit records
//
// # Idempotency
//
// Acquisition records carry a content-addressed proposal id. The log's
// UNIQUE(proposal_id) constraint turns a replayed commit into a no-op, so a
// caller that retries after a timeout cannot double-book a slot.
//
// # Ordering
//
// Reads order by seq ASC, then player id COLLATE BINARY, so identical
// databases always load identical rosters.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for a competing writer
//   - foreign_keys=ON
//
// Each Commit runs in its own transaction. One player's failed commit never
// affects another's.
package store
