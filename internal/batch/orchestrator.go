package batch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/ctxlog"
	"github.com/specialistvlad/flightderive/internal/derive"
	"github.com/specialistvlad/flightderive/internal/flight"
	"github.com/specialistvlad/flightderive/internal/order"
	"github.com/specialistvlad/flightderive/internal/refdata"
	"github.com/specialistvlad/flightderive/internal/report"
	"github.com/specialistvlad/flightderive/internal/signal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// PrecomputedStore keeps the non-series results of analyze passes.
type PrecomputedStore interface {
	Load(ctx context.Context, key string) (map[string]*signal.Signal, error)
	Save(ctx context.Context, key string, signals map[string]*signal.Signal) error
}

// Summary is what Run reports back.
type Summary struct {
	report.BatchSummary
	// Order is the processing order used for every flight.
	Order []string
	// Failed lists the paths of failed flights in completion order.
	Failed []string
}

// Orchestrator runs batches.
type Orchestrator struct {
	cfg         Config
	registry    *catalog.Registry
	accessor    flight.Accessor
	sink        report.Sink
	orderer     order.Provider
	engine      *derive.Engine
	precomputed PrecomputedStore
	refdata     refdata.Provider
	tracer      trace.Tracer
	now         func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPrecomputed enables the precomputed result store.
func WithPrecomputed(s PrecomputedStore) Option {
	return func(o *Orchestrator) { o.precomputed = s }
}

// WithReferenceData enables achieved flight record attributes.
func WithReferenceData(p refdata.Provider) Option {
	return func(o *Orchestrator) { o.refdata = p }
}

// WithOrderProvider replaces the dependency ordering.
func WithOrderProvider(p order.Provider) Option {
	return func(o *Orchestrator) { o.orderer = p }
}

// WithEngine replaces the derivation engine.
func WithEngine(e *derive.Engine) Option {
	return func(o *Orchestrator) { o.engine = e }
}

// WithTracer replaces the OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator. A nil sink discards every record.
func New(cfg Config, reg *catalog.Registry, acc flight.Accessor, sink report.Sink, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		registry: reg,
		accessor: acc,
		sink:     sink,
		orderer:  order.Dependency{},
		tracer:   otel.Tracer("github.com/specialistvlad/flightderive/internal/batch"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.sink == nil {
		o.sink = report.Multi{}
	}
	if o.engine == nil {
		o.engine = derive.New(reg, derive.WithTracer(o.tracer))
	}
	return o
}

// plan is what the sample flight decides for the whole batch.
type plan struct {
	runID     string
	timestamp time.Time
	stage     Stage
	order     []string
	// load restricts flight loads; empty loads everything.
	load []string
	// required are the raw inputs every flight must carry.
	required []string
}

// Run processes paths. The first path is the sample flight the processing
// order is computed from. With Mortal set the first failed flight aborts the
// batch and its error is returned; otherwise failures are counted and the
// batch carries on. A node kind the engine cannot classify always aborts.
func (o *Orchestrator) Run(ctx context.Context, paths []string) (_ *Summary, err error) {
	logger := ctxlog.FromContext(ctx)
	if len(paths) == 0 {
		logger.Warn("No files to process.")
		return nil, ErrNoFlights
	}

	p := &plan{
		runID:     uuid.NewString(),
		timestamp: o.now(),
		stage:     o.cfg.stage(),
	}
	ctx, logger = ctxlog.With(ctx, "run_id", p.runID)
	ctx, span := o.tracer.Start(ctx, "batch.run", trace.WithAttributes(
		attribute.String("batch.run_id", p.runID),
		attribute.String("batch.stage", string(p.stage)),
		attribute.String("batch.profile", o.cfg.Profile),
		attribute.Int("batch.files", len(paths)),
	))

	sum := &Summary{BatchSummary: report.BatchSummary{
		RunID:      p.runID,
		Timestamp:  p.timestamp,
		Stage:      string(p.stage),
		Profile:    o.cfg.Profile,
		Comment:    o.cfg.Comment,
		Repository: o.cfg.Repository,
		InputDir:   o.cfg.InputDir,
		OutputDir:  o.cfg.OutputDir,
		FileCount:  len(paths),
	}}
	defer func() {
		sum.Elapsed = o.now().Sub(p.timestamp)
		sum.Aborted = err != nil
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int("batch.ok", sum.OK), attribute.Int("batch.fail", sum.Fail))
		span.End()
		// Records outlive cancellation of the batch.
		o.sink.RecordBatch(context.WithoutCancel(ctx), sum.BatchSummary)
	}()

	logger.Info("🚀 Starting batch", "stage", p.stage, "profile", o.cfg.Profile, "files", len(paths), "workers", o.cfg.workers())

	if err := o.prepare(ctx, p, paths[0]); err != nil {
		return sum, err
	}
	sum.Order = p.order

	if o.cfg.DryRun {
		logger.Info("Dry run, not processing flights.", "order", p.order)
		return sum, nil
	}

	var mu sync.Mutex
	record := func(path string, ferr error) {
		mu.Lock()
		defer mu.Unlock()
		if ferr != nil {
			sum.Fail++
			sum.Failed = append(sum.Failed, path)
			return
		}
		sum.OK++
	}

	if o.cfg.workers() == 1 {
		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			ferr := o.processFlight(ctx, p, path)
			record(path, ferr)
			if ferr != nil && o.fatal(ferr) {
				return sum, ferr
			}
		}
		return sum, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.workers())
	for _, path := range paths {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			ferr := o.processFlight(gctx, p, path)
			record(path, ferr)
			if ferr != nil && o.fatal(ferr) {
				return ferr
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, err
	}
	return sum, ctx.Err()
}

// fatal reports whether a flight failure stops the batch.
func (o *Orchestrator) fatal(err error) bool {
	return o.cfg.Mortal || errors.Is(err, derive.ErrNotImplemented)
}

// prepare loads the sample flight and fixes the processing order, the load
// restriction and the required inputs.
func (o *Orchestrator) prepare(ctx context.Context, p *plan, samplePath string) error {
	logger := ctxlog.FromContext(ctx)

	sample, err := o.openFlight(ctx, samplePath, nil)
	if err != nil {
		return &FlightError{Path: samplePath, Err: err}
	}
	pre, err := o.loadPrecomputed(ctx, p, samplePath)
	if err != nil {
		return &FlightError{Path: samplePath, Err: err}
	}

	available := sample.InputNames()
	available = append(available, slices.Collect(maps.Keys(pre))...)
	available = append(available, sample.AttributeNames()...)
	slices.Sort(available)
	available = slices.Compact(available)

	requested := RequestedNames(o.cfg, o.registry)
	logger.Debug("Sample flight loaded.", "path", samplePath, "inputs", len(sample.Inputs), "precomputed", len(pre), "requested", len(requested))

	p.order, err = o.orderer.Order(ctx, available, requested, o.registry)
	if err != nil {
		return err
	}

	for _, name := range p.order {
		if _, ok := sample.Inputs[name]; ok {
			p.required = append(p.required, name)
		}
	}
	if p.stage == StageProfile {
		p.load = p.required
	}
	logger.Info("Processing order computed.", "length", len(p.order), "needed_inputs", len(p.required))
	return nil
}

// openFlight loads a flight and attaches aircraft and achieved flight record
// attributes.
func (o *Orchestrator) openFlight(ctx context.Context, path string, names []string) (*flight.Flight, error) {
	f := flight.New(path, o.cfg.Repository)
	if err := f.Load(ctx, o.accessor, names); err != nil {
		return nil, err
	}
	f.Aircraft = o.cfg.Aircraft.Values()

	if rec, ok := o.cfg.flightRecord(path); ok && o.refdata != nil {
		afr, err := refdata.AchievedFlightRecord(o.refdata, rec)
		if err != nil {
			return nil, err
		}
		f.AchievedFlightRecord = afr
		ctxlog.FromContext(ctx).Debug("Achieved flight record attached.", "path", path, "attributes", len(afr))
	}
	return f, nil
}

// loadPrecomputed returns the stored results a profile pass starts from.
// Analyze passes always start from the raw recordings.
func (o *Orchestrator) loadPrecomputed(ctx context.Context, p *plan, path string) (map[string]*signal.Signal, error) {
	if o.precomputed == nil || p.stage != StageProfile {
		return nil, nil
	}
	key := OutputPath(o.cfg.OutputDir, path, o.cfg.Profile, p.stage)
	pre, err := o.precomputed.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load precomputed results: %w", err)
	}
	return pre, nil
}

// processFlight runs one flight end to end and records its timing, whatever
// the outcome.
func (o *Orchestrator) processFlight(ctx context.Context, p *plan, path string) (err error) {
	ctx, logger := ctxlog.With(ctx, "flight", path)
	ctx, span := o.tracer.Start(ctx, "batch.flight", trace.WithAttributes(attribute.String("flight.path", path)))
	start := o.now()

	defer func() {
		t := report.Timing{
			RunID:     p.runID,
			Timestamp: p.timestamp,
			Stage:     string(p.stage),
			Profile:   o.cfg.Profile,
			Path:      path,
			Elapsed:   o.now().Sub(start),
			Status:    report.StatusOK,
		}
		if err != nil {
			t.Status = report.StatusFail
			t.Error = err.Error()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error("❌ Flight failed", "error", err)
		}
		span.End()
		o.sink.RecordTiming(context.WithoutCancel(ctx), t)
	}()

	logger.Info("▶️ Processing flight")
	if err := o.analyze(ctx, p, path); err != nil {
		return &FlightError{Path: path, Err: err}
	}
	return nil
}

// analyze loads, checks, derives and stores one flight.
func (o *Orchestrator) analyze(ctx context.Context, p *plan, path string) error {
	f, err := o.openFlight(ctx, path, p.load)
	if err != nil {
		return err
	}
	if missing := f.Missing(p.required); len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrSchemaMismatch, missing)
	}

	pre, err := o.loadPrecomputed(ctx, p, path)
	if err != nil {
		return err
	}

	out, err := o.engine.Derive(ctx, derive.Input{
		Duration:   f.Duration,
		Attributes: f,
		Results:    f.Seed(pre),
	}, p.order)
	if err != nil {
		return err
	}

	outPath := OutputPath(o.cfg.OutputDir, path, o.cfg.Profile, p.stage)
	if p.stage == StageAnalyze {
		if err := f.Export(ctx, o.accessor, outPath, out.Series); err != nil {
			return err
		}
		if o.precomputed != nil {
			if err := o.precomputed.Save(ctx, outPath, nonSeries(out.Results)); err != nil {
				return fmt.Errorf("failed to save precomputed results: %w", err)
			}
		}
	}

	if rs, ok := o.sink.(report.ResultSink); ok {
		rs.RecordResults(context.WithoutCancel(ctx), report.FlightResults{
			RunID:       p.runID,
			Profile:     o.cfg.Profile,
			Path:        path,
			OutputPath:  outPath,
			PointEvents: out.PointEvents,
			Instants:    out.Instants,
			Phases:      out.Phases,
			Approaches:  out.Approaches,
			Attributes:  out.Attributes,
		})
	}
	ctxlog.FromContext(ctx).Info("✅ Flight derived",
		"computed", out.Stats.Computed,
		"series", len(out.Series),
		"events", len(out.PointEvents)+len(out.Instants),
		"phases", len(out.Phases),
	)
	return nil
}

// nonSeries keeps the results that are not time series.
func nonSeries(results map[string]*signal.Signal) map[string]*signal.Signal {
	out := make(map[string]*signal.Signal)
	for name, s := range results {
		if s != nil && s.Kind != signal.TimeSeries {
			out[name] = s
		}
	}
	return out
}
