package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/config"
	"github.com/specialistvlad/flightderive/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	profile    *config.Profile
	registry   *catalog.Registry
	metrics    *prometheus.Registry
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry and
// metrics registry.
func NewApp(outW io.Writer, cfg *Config, modules ...catalog.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	profile, err := config.Load(ctx, cfg.ProfilePath, cfg.ProfileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyOverrides(profile, cfg)
	logger.Debug("Profile loaded.", "profile", profile.Name, "stage", profile.Stage)

	reg := catalog.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.Load(modules...)
	logger.Debug("All node modules registered.", "modules", len(modules), "nodes", reg.Len())

	if err := reg.Validate(ctx); err != nil {
		// A node library that does not validate is a programming error.
		panic(err)
	}
	for _, m := range profile.Modules {
		if !reg.HasModule(m) {
			return nil, fmt.Errorf("profile '%s' uses unknown module '%s', have: %v", profile.Name, m, reg.Modules())
		}
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		profile:  profile,
		registry: reg,
		metrics:  prometheus.NewRegistry(),
	}, nil
}

func applyOverrides(p *config.Profile, cfg *Config) {
	if cfg.Workers > 0 {
		p.Workers = cfg.Workers
	}
	if cfg.Mortal != nil {
		p.Mortal = *cfg.Mortal
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *catalog.Registry {
	return a.registry
}

// Profile returns the loaded profile.
func (a *App) Profile() *config.Profile {
	return a.profile
}
