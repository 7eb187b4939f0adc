package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFlights is returned when a batch is started without files.
	ErrNoFlights = errors.New("no flights to process")
	// ErrSchemaMismatch marks a flight that lacks a raw input the sample
	// flight had and the processing order needs.
	ErrSchemaMismatch = errors.New("flight does not match the sample flight")
)

// FlightError is a failure of one flight.
type FlightError struct {
	Path string
	Err  error
}

func (e *FlightError) Error() string {
	return fmt.Sprintf("flight '%s': %v", e.Path, e.Err)
}

func (e *FlightError) Unwrap() error { return e.Err }
