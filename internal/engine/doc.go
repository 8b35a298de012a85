// Package engine orchestrates roster decisions end to end: capacity,
// planning, validation, pricing and per-player commit.
//
// The planning core it drives is pure and deterministic. The engine's only
// I/O is the caller-supplied Committer and optional PriceSource, called
// sequentially in input order.
//
// Every call names the acting team explicitly. Nothing is inferred from
// ambient state.
//
// Batches are partial-success: each player is validated and committed on
// its own, and one player's failure (a rejected proposal, a pricing error,
// a commit error) never rolls back another's. Callers get a BatchResult
// listing both outcomes.
package engine
