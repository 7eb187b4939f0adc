// Package catalog maps derived parameter names to the code that computes
// them.
//
// Node libraries are compiled into the binary as Modules. During startup each
// module registers its NodeDescriptors into a Registry, which is validated
// once and then shared read-only by every derivation pass. Descriptors are
// immutable values: the frequency and offset a node runs at for a given
// flight travel in the per-call Invocation, never in the descriptor, so the
// same Registry can serve any number of flights without copying.
package catalog
