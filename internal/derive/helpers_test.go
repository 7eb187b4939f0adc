package derive

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/ctxlog"
	"github.com/specialistvlad/flightderive/internal/signal"
)

func testCtx() (context.Context, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger), buf
}

func testLogger() *slog.Logger {
	ctx, _ := testCtx()
	return ctxlog.FromContext(ctx)
}

// attrs is a map backed AttributeSource.
type attrs map[string]*signal.Signal

func (a attrs) Attribute(name string) (*signal.Signal, bool) {
	s, ok := a[name]
	return s, ok
}

// countingAligner records how often each dependency gets resampled.
type countingAligner struct {
	calls map[string]int
}

func newCountingAligner() *countingAligner {
	return &countingAligner{calls: make(map[string]int)}
}

func (c *countingAligner) align(s *signal.Signal, frequency, offset float64) *signal.Signal {
	c.calls[s.Name]++
	return signal.Align(s, frequency, offset)
}

func series(name string, frequency float64, n int) *signal.Signal {
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i)
	}
	return signal.NewSeries(name, frequency, 0, signal.NewArray(data...))
}

func registry(nodes ...catalog.NodeDescriptor) *catalog.Registry {
	r := catalog.New()
	for _, n := range nodes {
		r.RegisterNode(n)
	}
	return r
}

func invocation(node string, frequency, duration float64) *catalog.Invocation {
	ctx, _ := testCtx()
	return catalog.NewInvocation(ctx, ctxlog.FromContext(ctx), node, frequency, 0, duration)
}

func emptyOutcome() *Outcome {
	return &Outcome{Results: map[string]*signal.Signal{}, Series: map[string]*signal.Signal{}}
}

func testLoggerTo(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
