// Package signal defines the values that flow between derivation nodes.
//
// A Signal is a tagged union: the Kind field says which payload field is
// populated. Every kind except Attribute lives on a time axis described by a
// sample Frequency (Hz) and a phase Offset (seconds, smaller than one sample
// period). Sample i of such a signal sits at time i/Frequency + Offset from
// the start of the flight, which is the only relation Align needs to move a
// signal between rates.
package signal
