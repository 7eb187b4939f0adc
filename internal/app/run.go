package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/flightderive/internal/batch"
	"github.com/specialistvlad/flightderive/internal/ctxlog"
	"github.com/specialistvlad/flightderive/internal/flightfile"
	"github.com/specialistvlad/flightderive/internal/fsutil"
)

// Run discovers the profile's flights and processes them as one batch.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer func() {
		err = errors.Join(err, a.closeHealthCheckServer())
	}()

	files, err := fsutil.FindFlightFiles(a.profile.InputDir, a.profile.Pattern)
	if err != nil {
		return fmt.Errorf("failed to list flights in '%s': %w", a.profile.InputDir, err)
	}
	a.logger.Info("🔎 Flights discovered.", "dir", a.profile.InputDir, "pattern", a.profile.Pattern, "count", len(files))

	opts, closeStores, err := a.openStores(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeStores())
	}()

	sinks, err := a.openSinks(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, sinks.Close())
	}()

	orch := batch.New(a.batchConfig(), a.registry, flightfile.New(), sinks, opts...)
	summary, err := orch.Run(ctx, files)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}
	if summary.Fail > 0 {
		a.logger.Warn("Some flights failed.", "failed", summary.Fail, "paths", summary.Failed)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
