// Package order computes the processing order of a derivation pass.
//
// The order is a sequence of names in which every node appears after all of
// its dependencies. It is computed from the requested outputs, the names
// already available on a flight (raw recordings, precomputed results and
// attributes) and the catalog. Nodes that cannot operate because none of
// their dependencies can ever be produced are left out, so the engine never
// meets a node whose inputs are all missing for a flight shaped like the
// sample.
package order
