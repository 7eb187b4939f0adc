package derive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/ctxlog"
	"github.com/specialistvlad/flightderive/internal/signal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Input is what a pass starts from.
type Input struct {
	// Duration of the flight in seconds.
	Duration float64
	// Attributes resolves aircraft and flight attributes. May be nil.
	Attributes AttributeSource
	// Results holds the raw inputs and any precomputed values. The pass adds
	// to this map in place.
	Results map[string]*signal.Signal
}

// Stats counts what a pass did.
type Stats struct {
	Computed    int
	Skipped     int
	CacheHits   int
	CacheMisses int
}

// Outcome holds the typed products of a pass.
type Outcome struct {
	Results     map[string]*signal.Signal
	Series      map[string]*signal.Signal
	PointEvents []signal.Point
	Instants    []signal.Instant
	Phases      []signal.Section
	Attributes  []*signal.Signal
	Approaches  []signal.Approach
	Stats       Stats
}

// Engine runs derivation passes against a catalog.
type Engine struct {
	catalog catalog.Catalog
	align   AlignFunc
	tracer  trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithAligner replaces the resampling function used for dependencies.
func WithAligner(fn AlignFunc) Option {
	return func(e *Engine) { e.align = fn }
}

// WithTracer replaces the OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// New creates an Engine for the given catalog.
func New(cat catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: cat,
		align:   signal.Align,
		tracer:  otel.Tracer("github.com/specialistvlad/flightderive/internal/derive"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Derive walks order once and produces every name that is not yet known.
// Names that resolve as attributes, are already in the results, or are
// unknown to the catalog are skipped. The first node failure aborts the pass.
func (e *Engine) Derive(ctx context.Context, in Input, order []string) (*Outcome, error) {
	logger := ctxlog.FromContext(ctx)

	results := in.Results
	if results == nil {
		results = make(map[string]*signal.Signal)
	}
	out := &Outcome{
		Results: results,
		Series:  make(map[string]*signal.Signal),
	}
	cache := NewAlignmentCache(e.align)

	for _, name := range order {
		if _, ok := lookupAttribute(in.Attributes, name); ok {
			logger.Debug("Skipping attribute.", "node", name)
			out.Stats.Skipped++
			continue
		}
		if _, ok := results[name]; ok {
			logger.Debug("Skipping already computed parameter.", "node", name)
			out.Stats.Skipped++
			continue
		}
		desc, ok := e.catalog.Lookup(name)
		if !ok {
			logger.Info("In processing order but not in catalog, skipping.", "node", name)
			out.Stats.Skipped++
			continue
		}
		if _, ok := out.Series[name]; ok {
			logger.Warn("Parameter has a series output but no result entry.", "node", name)
		}

		if err := e.run(ctx, logger.With("node", name), desc, in, cache, out); err != nil {
			out.Stats.CacheHits, out.Stats.CacheMisses = cache.Hits(), cache.Misses()
			return out, &NodeError{Node: name, Err: err}
		}
		out.Stats.Computed++
	}

	out.Stats.CacheHits, out.Stats.CacheMisses = cache.Hits(), cache.Misses()
	logger.Debug("Derivation pass finished.",
		"computed", out.Stats.Computed,
		"skipped", out.Stats.Skipped,
		"cache_hits", out.Stats.CacheHits,
		"cache_misses", out.Stats.CacheMisses,
	)
	return out, nil
}

// run resolves, computes and classifies one node.
func (e *Engine) run(ctx context.Context, logger *slog.Logger, desc *catalog.NodeDescriptor, in Input, cache *AlignmentCache, out *Outcome) (err error) {
	ctx, span := e.tracer.Start(ctx, "derive.node", trace.WithAttributes(
		attribute.String("node.name", desc.Name),
		attribute.String("node.kind", desc.Kind.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	logger.Debug("▶️ Computing parameter")

	res, err := resolve(logger, desc, out.Results, in.Attributes, cache)
	if err != nil {
		return err
	}
	span.SetAttributes(
		attribute.Float64("node.frequency", res.frequency),
		attribute.Float64("node.offset", res.offset),
	)

	inv := catalog.NewInvocation(ctxlog.WithLogger(ctx, logger), logger, desc.Name, res.frequency, res.offset, in.Duration)
	result, err := compute(desc, inv, res.deps)
	if err != nil {
		return err
	}

	if err := classify(logger, desc, inv, result, out); err != nil {
		return err
	}
	logger.Debug("✅ Computed parameter", "kind", desc.Kind.String(), "frequency", res.frequency, "offset", res.offset)
	return nil
}

// compute calls the node and turns a panic into an error so that one broken
// node cannot take the whole batch down.
func compute(desc *catalog.NodeDescriptor, inv *catalog.Invocation, deps []*signal.Signal) (result *signal.Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("node panicked: %v", r)
		}
	}()
	return desc.Compute(inv, deps)
}
