// Package batch runs derivation passes over a set of flight files.
//
// The processing order is computed once, from the first flight of the batch,
// and reused for every flight. Each flight is then loaded, seeded, derived
// and, in the analyze stage, written back out together with its precomputed
// results. One timing record is emitted per flight and one summary per batch,
// the latter even when a failure aborts the batch.
package batch
