package batch

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/flight"
	"github.com/specialistvlad/flightderive/internal/refdata"
)

// Stage selects what a batch produces.
type Stage string

const (
	// StageAnalyze derives everything and writes output flights plus
	// precomputed results.
	StageAnalyze Stage = "analyze"
	// StageProfile derives a profile's own nodes on top of an analyze
	// stage's output. Nothing is written back.
	StageProfile Stage = "profile"
)

// BaseProfile is the profile name that runs the analyze stage.
const BaseProfile = "base"

// StageFor returns the stage a profile runs in.
func StageFor(profile string) Stage {
	if profile == BaseProfile {
		return StageAnalyze
	}
	return StageProfile
}

// Config is the batch configuration.
type Config struct {
	Profile string
	// Stage defaults to StageFor(Profile).
	Stage Stage
	// Modules are the profile's own node modules. In the profile stage they
	// define what is requested.
	Modules []string
	// Requested overrides the requested node names.
	Requested []string
	// Exclude is removed from the requested set.
	Exclude []string
	// Mortal aborts the batch on the first failed flight.
	Mortal bool
	// Workers is the number of flights processed concurrently.
	Workers int
	// DryRun computes and logs the processing order without touching any
	// flight but the sample.
	DryRun bool

	InputDir   string
	OutputDir  string
	Repository string
	Comment    string

	Aircraft flight.AircraftInfo
	// FlightRecords maps flight paths (or base names) to what operations
	// recorded about them.
	FlightRecords map[string]refdata.FlightRecord
}

func (c Config) stage() Stage {
	if c.Stage != "" {
		return c.Stage
	}
	return StageFor(c.Profile)
}

func (c Config) workers() int {
	if c.Workers < 1 {
		return 1
	}
	return c.Workers
}

// RequestedNames returns the node names a batch asks for.
func RequestedNames(cfg Config, reg *catalog.Registry) []string {
	var names []string
	switch {
	case len(cfg.Requested) > 0:
		names = slices.Clone(cfg.Requested)
	case cfg.stage() == StageProfile:
		names = reg.Names(cfg.Modules...)
	default:
		names = reg.Names()
	}
	names = slices.DeleteFunc(names, func(n string) bool {
		return slices.Contains(cfg.Exclude, n)
	})
	slices.Sort(names)
	return slices.Compact(names)
}

// OutputPath returns where the analyze stage writes a flight. The profile
// stage reads its input in place, so its output path is the input path.
func OutputPath(outputDir, path, profile string, stage Stage) string {
	if stage != StageAnalyze {
		return path
	}
	name := strings.ReplaceAll(filepath.Base(path), ".0", "_0")
	ext := filepath.Ext(name)
	name = strings.TrimSuffix(name, ext) + "_" + profile + ext
	return filepath.Join(outputDir, name)
}

func (c Config) flightRecord(path string) (refdata.FlightRecord, bool) {
	if rec, ok := c.FlightRecords[path]; ok {
		return rec, true
	}
	rec, ok := c.FlightRecords[filepath.Base(path)]
	return rec, ok
}
