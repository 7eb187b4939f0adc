package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/flightderive/internal/batch"
	"github.com/specialistvlad/flightderive/internal/ctxlog"
	"github.com/specialistvlad/flightderive/internal/flight"
	"github.com/specialistvlad/flightderive/internal/precomputed"
	"github.com/specialistvlad/flightderive/internal/refdata"
	"github.com/specialistvlad/flightderive/internal/report"
)

// batchConfig converts the loaded profile into the orchestrator's config.
// Relative paths in flight records are taken relative to the input directory.
func (a *App) batchConfig() batch.Config {
	p := a.profile
	records := make(map[string]refdata.FlightRecord, len(p.FlightRecords))
	for path, r := range p.FlightRecords {
		if !filepath.IsAbs(path) && filepath.Base(path) != path {
			path = filepath.Join(p.InputDir, path)
		}
		records[path] = refdata.FlightRecord(r)
	}
	return batch.Config{
		Profile:       p.Name,
		Stage:         batch.Stage(p.Stage),
		Modules:       p.Modules,
		Requested:     p.Requested,
		Exclude:       p.Exclude,
		Mortal:        p.Mortal,
		Workers:       p.Workers,
		DryRun:        a.config.DryRun,
		InputDir:      p.InputDir,
		OutputDir:     p.OutputDir,
		Repository:    p.Repository,
		Comment:       p.Comment,
		Aircraft:      flight.AircraftInfo(p.Aircraft),
		FlightRecords: records,
	}
}

// openSinks builds the report sinks the profile asks for. Logging and
// metrics are always on.
func (a *App) openSinks(ctx context.Context) (report.Multi, error) {
	logger := ctxlog.FromContext(ctx)
	r := a.profile.Report

	sinks := report.Multi{report.LogSink{}, report.NewMetrics(a.metrics)}
	if r.SQLite != "" {
		db, err := report.OpenSQLite(ctx, r.SQLite)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, db)
		logger.Debug("SQLite report enabled.", "path", r.SQLite)
	}
	if r.Workbook != "" {
		sinks = append(sinks, report.NewWorkbook(r.Workbook))
		logger.Debug("Workbook report enabled.", "path", r.Workbook)
	}
	if r.SocketIO != "" {
		sio, err := report.DialSocketIO(ctx, r.SocketIO, report.SocketIOOptions{})
		if err != nil {
			// Close whatever was opened so far.
			_ = sinks.Close()
			return nil, err
		}
		sinks = append(sinks, sio)
		logger.Debug("Socket.IO report enabled.", "url", r.SocketIO)
	}
	return sinks, nil
}

// openStores opens the precomputed store and loads the reference data when
// the profile names them.
func (a *App) openStores(ctx context.Context) ([]batch.Option, func() error, error) {
	logger := ctxlog.FromContext(ctx)
	var opts []batch.Option
	closeFn := func() error { return nil }

	if path := a.profile.ReferenceData; path != "" {
		ref, err := refdata.Load(path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("📚 Reference data loaded.", "path", path, "airports", ref.Len())
		opts = append(opts, batch.WithReferenceData(ref))
	}

	if dir := a.profile.Precomputed; dir != "" {
		store, err := precomputed.Open(ctx, dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open precomputed results: %w", err)
		}
		opts = append(opts, batch.WithPrecomputed(store))
		closeFn = store.Close
	}
	return opts, closeFn, nil
}
