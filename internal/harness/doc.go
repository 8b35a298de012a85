// Package harness runs YAML roster scenarios end to end and compares their
// traces against golden files.
//
// A scenario names a CUE league, a starting roster and a list of steps (add,
// move, drop). Each scenario runs against a fresh in-memory store with
// sequential batch ids, so the same file always yields byte-identical traces.
// Proposal ids are content hashes and are left out of traces; seq values are
// kept.
package harness
