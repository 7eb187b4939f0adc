package derive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/flightderive/internal/signal"
)

var (
	// ErrUnresolvableNode means none of a node's dependencies are available.
	ErrUnresolvableNode = errors.New("unresolvable node")
	// ErrOutOfRangeIndex means an event falls outside the flight.
	ErrOutOfRangeIndex = errors.New("event index out of range")
	// ErrIntervalOutOfRange means a section bound falls outside the flight.
	ErrIntervalOutOfRange = errors.New("interval out of range")
	// ErrApproachOutOfRange means an approach index falls outside the flight.
	ErrApproachOutOfRange = errors.New("approach out of range")
	// ErrArrayLengthMismatch means a derived series does not cover the flight.
	ErrArrayLengthMismatch = errors.New("array length mismatch")
	// ErrNotImplemented means the engine has no classifier for a node kind.
	// Unlike the other errors it points at a broken catalog, not at bad data.
	ErrNotImplemented = errors.New("not implemented")
)

// NodeError wraps any failure raised while producing a node.
type NodeError struct {
	Node string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node '%s' failed: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// UnresolvableNodeError lists the dependencies that were all missing.
type UnresolvableNodeError struct {
	Node         string
	Dependencies []string
}

func (e *UnresolvableNodeError) Error() string {
	return fmt.Sprintf("no dependencies available for '%s': nodes cannot operate without any of [%s]",
		e.Node, strings.Join(e.Dependencies, ", "))
}

func (e *UnresolvableNodeError) Unwrap() error { return ErrUnresolvableNode }

// IndexRangeError reports an event outside [0, duration] at 1 Hz.
type IndexRangeError struct {
	Kind     signal.Kind
	Event    string
	Index    float64
	Duration float64
}

func (e *IndexRangeError) Error() string {
	return fmt.Sprintf("%s '%s' index %.2f is not between 0 and %g", e.Kind, e.Event, e.Index, e.Duration)
}

func (e *IndexRangeError) Unwrap() error { return ErrOutOfRangeIndex }

// IntervalRangeError reports a section bound outside its allowed range.
type IntervalRangeError struct {
	Section string
	Bound   string
	Value   float64
	Limit   float64
}

func (e *IntervalRangeError) Error() string {
	return fmt.Sprintf("section '%s' %s (%.2f) not between 0 and %g", e.Section, e.Bound, e.Value, e.Limit)
}

func (e *IntervalRangeError) Unwrap() error { return ErrIntervalOutOfRange }

// ApproachRangeError reports an approach index outside the flight.
type ApproachRangeError struct {
	Node     string
	Field    string
	Value    *float64
	Duration float64
}

func (e *ApproachRangeError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("approach '%s' has no %s", e.Node, e.Field)
	}
	return fmt.Sprintf("approach '%s' %s %.2f is outside of flight data (0..%g)", e.Node, e.Field, *e.Value, e.Duration)
}

func (e *ApproachRangeError) Unwrap() error { return ErrApproachOutOfRange }

// LengthMismatchError reports a derived series of the wrong length.
type LengthMismatchError struct {
	Parameter string
	Expected  int
	Actual    int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("array length mismatch for parameter '%s': expected %d, resulting array length %d",
		e.Parameter, e.Expected, e.Actual)
}

func (e *LengthMismatchError) Unwrap() error { return ErrArrayLengthMismatch }

// NotImplementedError reports a node kind the classifier does not handle.
type NotImplementedError struct {
	Node string
	Kind signal.Kind
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("unknown type %s for node '%s'", e.Kind, e.Node)
}

func (e *NotImplementedError) Unwrap() error { return ErrNotImplemented }
