package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/flightderive/internal/batch"
	"github.com/specialistvlad/flightderive/internal/ctxlog"
)

// Defaults applied to missing attributes.
const (
	DefaultPattern    = "*.fdf"
	DefaultRepository = "local"
)

// hclFile represents the top-level structure of a profile file for decoding.
type hclFile struct {
	Profiles []*hclProfile `hcl:"profile,block"`
}

type hclProfile struct {
	Name          string             `hcl:"name,label"`
	Stage         string             `hcl:"stage,optional"`
	Modules       []string           `hcl:"modules,optional"`
	Requested     []string           `hcl:"requested,optional"`
	Exclude       []string           `hcl:"exclude,optional"`
	Mortal        bool               `hcl:"mortal,optional"`
	Workers       int                `hcl:"workers,optional"`
	InputDir      string             `hcl:"input_dir"`
	Pattern       string             `hcl:"pattern,optional"`
	OutputDir     string             `hcl:"output_dir,optional"`
	Repository    string             `hcl:"repository,optional"`
	ReferenceData string             `hcl:"reference_data,optional"`
	Precomputed   string             `hcl:"precomputed,optional"`
	Comment       string             `hcl:"comment,optional"`
	Aircraft      *hclAircraft       `hcl:"aircraft,block"`
	FlightRecords []*hclFlightRecord `hcl:"flight_record,block"`
	Report        *hclReport         `hcl:"report,block"`
}

type hclAircraft struct {
	Frame              string `hcl:"frame,optional"`
	Manufacturer       string `hcl:"manufacturer,optional"`
	Series             string `hcl:"series,optional"`
	Family             string `hcl:"family,optional"`
	Model              string `hcl:"model,optional"`
	TailNumber         string `hcl:"tail_number,optional"`
	PrecisePositioning bool   `hcl:"precise_positioning,optional"`
	FrameDoubled       bool   `hcl:"frame_doubled,optional"`
}

type hclFlightRecord struct {
	Path           string `hcl:"path,label"`
	TakeoffAirport string `hcl:"takeoff_airport,optional"`
	TakeoffRunway  string `hcl:"takeoff_runway,optional"`
	LandingAirport string `hcl:"landing_airport,optional"`
	LandingRunway  string `hcl:"landing_runway,optional"`
}

type hclReport struct {
	SQLite   string `hcl:"sqlite,optional"`
	Workbook string `hcl:"workbook,optional"`
	SocketIO string `hcl:"socketio,optional"`
}

var validate = newValidator()

// mustRegister panics when a validation cannot be registered.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register validation '%s': %v", tag, err))
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "glob", func(fl validator.FieldLevel) bool {
		_, err := filepath.Match(fl.Field().String(), "")
		return err == nil
	})
	return v
}

// Load reads the profile file at path and returns the profile called name.
// An empty name selects the only profile of the file.
func Load(ctx context.Context, path, name string) (*Profile, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading profile file.", "path", path, "profile", name)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decode(file.Body, path, name)
}

// Parse is Load for in-memory content; filename is used in diagnostics.
func Parse(src []byte, filename, name string) (*Profile, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decode(file.Body, filename, name)
}

func decode(body hcl.Body, filename, name string) (*Profile, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	raw, err := selectProfile(parsed.Profiles, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	p := fromHCL(raw)
	applyDefaults(p)
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("invalid profile '%s': %w", p.Name, err)
	}
	return p, nil
}

func selectProfile(profiles []*hclProfile, name string) (*hclProfile, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profile blocks found")
	}
	if name == "" {
		if len(profiles) > 1 {
			return nil, fmt.Errorf("file defines %d profiles, pick one with --profile", len(profiles))
		}
		return profiles[0], nil
	}
	var found *hclProfile
	var names []string
	for _, p := range profiles {
		names = append(names, p.Name)
		if p.Name != name {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("profile '%s' is defined twice", name)
		}
		found = p
	}
	if found == nil {
		return nil, fmt.Errorf("profile '%s' not found, have: %s", name, strings.Join(names, ", "))
	}
	return found, nil
}

func fromHCL(h *hclProfile) *Profile {
	p := &Profile{
		Name:          h.Name,
		Stage:         h.Stage,
		Modules:       h.Modules,
		Requested:     h.Requested,
		Exclude:       h.Exclude,
		Mortal:        h.Mortal,
		Workers:       h.Workers,
		InputDir:      h.InputDir,
		Pattern:       h.Pattern,
		OutputDir:     h.OutputDir,
		Repository:    h.Repository,
		ReferenceData: h.ReferenceData,
		Precomputed:   h.Precomputed,
		Comment:       h.Comment,
		FlightRecords: make(map[string]FlightRecord, len(h.FlightRecords)),
	}
	if h.Aircraft != nil {
		p.Aircraft = Aircraft(*h.Aircraft)
	}
	for _, fr := range h.FlightRecords {
		p.FlightRecords[fr.Path] = FlightRecord{
			TakeoffAirport: fr.TakeoffAirport,
			TakeoffRunway:  fr.TakeoffRunway,
			LandingAirport: fr.LandingAirport,
			LandingRunway:  fr.LandingRunway,
		}
	}
	if h.Report != nil {
		p.Report = Report(*h.Report)
	}
	return p
}

func applyDefaults(p *Profile) {
	if p.Stage == "" {
		p.Stage = string(batch.StageFor(p.Name))
	}
	if p.Workers == 0 {
		p.Workers = 1
	}
	if p.Pattern == "" {
		p.Pattern = DefaultPattern
	}
	if p.Repository == "" {
		p.Repository = DefaultRepository
	}
}
