// Package derive executes derivation passes over a single flight.
//
// A pass walks a precomputed processing order exactly once. For every name
// that still has to be produced it binds the node's dependencies from the
// pass results or the flight attributes, picks the frequency and offset the
// node runs at, resamples the dependencies through a per-pass alignment
// cache, calls the node and then classifies and validates what came back
// according to the node's declared kind. Validated values land in the pass
// results, where later nodes find them, and in the typed collections of the
// Outcome.
//
// A pass is strictly sequential. Independent flights may run their passes
// concurrently because the catalog is read-only and every piece of mutable
// state (results, cache, outcome) belongs to one pass.
package derive
