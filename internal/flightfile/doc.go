// Package flightfile reads and writes flight files.
//
// A flight file is a single MessagePack document holding the recording's
// duration, start time, frame descriptors and every signal. Attribute values
// are stored with their cty type so that objects and lists survive the round
// trip. The same signal codec backs the precomputed store.
package flightfile
