package report

import (
	"context"
	"time"

	"github.com/specialistvlad/flightderive/internal/ctxlog"
)

// LogSink writes records to the context logger.
type LogSink struct{}

// RecordTiming implements Sink.
func (LogSink) RecordTiming(ctx context.Context, t Timing) {
	logger := ctxlog.FromContext(ctx)
	args := []any{"path", t.Path, "status", t.Status, "elapsed", t.Elapsed.Round(time.Millisecond).String()}
	if t.Status == StatusFail {
		logger.Warn("❌ Flight failed", append(args, "error", t.Error)...)
		return
	}
	logger.Info("✅ Flight processed", args...)
}

// RecordBatch implements Sink.
func (LogSink) RecordBatch(ctx context.Context, s BatchSummary) {
	ctxlog.FromContext(ctx).Info("🏁 Batch finished",
		"run_id", s.RunID,
		"stage", s.Stage,
		"profile", s.Profile,
		"files", s.FileCount,
		"ok", s.OK,
		"fail", s.Fail,
		"aborted", s.Aborted,
		"elapsed", s.Elapsed.Round(time.Millisecond).String(),
	)
}
