package catalog

import (
	"context"
	"log/slog"
	"math"

	"github.com/specialistvlad/flightderive/internal/signal"
)

// ComputeFunc computes a node's value. deps holds one entry per declared
// dependency, in declaration order, already aligned to the invocation's
// frequency and offset; absent dependencies are nil. Returning a nil signal
// means the node produced no value.
type ComputeFunc func(inv *Invocation, deps []*signal.Signal) (*signal.Signal, error)

// NodeDescriptor describes one computable node.
type NodeDescriptor struct {
	Name         string
	Dependencies []string
	Kind         signal.Kind
	Units        string

	// Frequency and Offset pin the node's output timing. Nil means the
	// value is taken from the first dependency with a time axis.
	Frequency *float64
	Offset    *float64
	// NoAlign disables resampling of the dependencies entirely.
	NoAlign bool

	Compute ComputeFunc

	// Module is filled in by the Registry.
	Module string
}

// Catalog is the read-only view of the registered nodes.
type Catalog interface {
	Lookup(name string) (*NodeDescriptor, bool)
}

// Invocation is the context of a single node execution.
type Invocation struct {
	ctx       context.Context
	logger    *slog.Logger
	Node      string
	Frequency float64
	Offset    float64
	// Duration of the flight in seconds.
	Duration float64
}

// NewInvocation builds the per-call context handed to ComputeFunc.
func NewInvocation(ctx context.Context, logger *slog.Logger, node string, frequency, offset, duration float64) *Invocation {
	return &Invocation{
		ctx:       ctx,
		logger:    logger,
		Node:      node,
		Frequency: frequency,
		Offset:    offset,
		Duration:  duration,
	}
}

// Context returns the pass context.
func (inv *Invocation) Context() context.Context { return inv.ctx }

// Logger returns a logger scoped to the node.
func (inv *Invocation) Logger() *slog.Logger { return inv.logger }

// Samples returns the number of samples a time series at the invocation's
// frequency must have to cover the flight.
func (inv *Invocation) Samples() int {
	return int(math.Ceil(inv.Duration * inv.Frequency))
}

// Series builds a time series named after the node at the invocation's timing.
func (inv *Invocation) Series(arr *signal.Array) *signal.Signal {
	return signal.NewSeries(inv.Node, inv.Frequency, inv.Offset, arr)
}

// Points builds a point event signal named after the node.
func (inv *Invocation) Points(points ...signal.Point) *signal.Signal {
	return signal.NewPoints(inv.Node, inv.Frequency, inv.Offset, points...)
}

// Instants builds an instant event signal named after the node.
func (inv *Invocation) Instants(instants ...signal.Instant) *signal.Signal {
	return signal.NewInstants(inv.Node, inv.Frequency, inv.Offset, instants...)
}

// Sections builds an interval signal named after the node.
func (inv *Invocation) Sections(sections ...signal.Section) *signal.Signal {
	return signal.NewSections(inv.Node, inv.Frequency, inv.Offset, sections...)
}

// Approaches builds an approach signal named after the node.
func (inv *Invocation) Approaches(approaches ...signal.Approach) *signal.Signal {
	return signal.NewApproaches(inv.Node, inv.Frequency, inv.Offset, approaches...)
}
