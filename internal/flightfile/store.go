package flightfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/specialistvlad/flightderive/internal/ctxlog"
	"github.com/specialistvlad/flightderive/internal/flight"
	"github.com/specialistvlad/flightderive/internal/signal"
	"github.com/vmihailenco/msgpack/v5"
)

// FormatVersion is written into every flight file.
const FormatVersion = 1

// ErrUnsupportedVersion is returned for files written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported flight file version")

type fileDoc struct {
	Version  int               `msgpack:"version"`
	Duration float64           `msgpack:"duration"`
	Start    time.Time         `msgpack:"start"`
	Frame    map[string]string `msgpack:"frame,omitempty"`
	Signals  []*signalDoc      `msgpack:"signals"`
	Invalid  []*signalDoc      `msgpack:"invalid,omitempty"`
}

// Store implements flight.Accessor on local MessagePack files.
type Store struct{}

var _ flight.Accessor = (*Store)(nil)

// New returns a file store.
func New() *Store {
	return &Store{}
}

// Load reads the file at path. Signals not named in names are dropped after
// decoding; an empty names slice keeps all of them.
func (s *Store) Load(ctx context.Context, path string, names []string) (*flight.Recording, error) {
	logger := ctxlog.FromContext(ctx).With("path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open flight file: %w", err)
	}
	defer f.Close()

	var doc fileDoc
	if err := msgpack.NewDecoder(bufio.NewReader(f)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode flight file '%s': %w", path, err)
	}
	if doc.Version > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	keep := func(name string) bool {
		if len(wanted) == 0 {
			return true
		}
		_, ok := wanted[name]
		return ok
	}

	rec := &flight.Recording{
		Duration: doc.Duration,
		Start:    doc.Start,
		Frame:    doc.Frame,
		Signals:  map[string]*signal.Signal{},
		Invalid:  map[string]*signal.Signal{},
	}
	for _, d := range doc.Signals {
		if !keep(d.Name) {
			continue
		}
		sig, err := fromDoc(d)
		if err != nil {
			return nil, err
		}
		rec.Signals[sig.Name] = sig
	}
	for _, d := range doc.Invalid {
		sig, err := fromDoc(d)
		if err != nil {
			return nil, err
		}
		rec.Invalid[sig.Name] = sig
	}

	logger.Debug("Flight file decoded.", "signals", len(rec.Signals), "stored", len(doc.Signals))
	return rec, nil
}

// Save writes rec to path. The file is written next to its destination and
// renamed into place, so readers never see a partial file.
func (s *Store) Save(ctx context.Context, path string, rec *flight.Recording) error {
	logger := ctxlog.FromContext(ctx).With("path", path)

	doc := fileDoc{
		Version:  FormatVersion,
		Duration: rec.Duration,
		Start:    rec.Start,
		Frame:    rec.Frame,
	}
	for _, name := range sortedNames(rec.Signals) {
		d, err := toDoc(rec.Signals[name])
		if err != nil {
			return err
		}
		doc.Signals = append(doc.Signals, d)
	}
	for _, name := range sortedNames(rec.Invalid) {
		d, err := toDoc(rec.Invalid[name])
		if err != nil {
			return err
		}
		doc.Invalid = append(doc.Invalid, d)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := msgpack.NewEncoder(w).Encode(&doc); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode flight file: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write flight file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write flight file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move flight file into place: %w", err)
	}

	logger.Debug("Flight file written.", "signals", len(doc.Signals))
	return nil
}

func sortedNames(m map[string]*signal.Signal) []string {
	return slices.Sorted(maps.Keys(m))
}
