package testutil

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/specialistvlad/flightderive/internal/flight"
	"github.com/specialistvlad/flightderive/internal/signal"
)

// MemoryAccessor is an in-memory flight.Accessor.
type MemoryAccessor struct {
	mu    sync.Mutex
	files map[string]*flight.Recording
	saved map[string]*flight.Recording
	loads map[string][][]string
}

// NewMemoryAccessor returns an accessor holding the given recordings.
func NewMemoryAccessor(files map[string]*flight.Recording) *MemoryAccessor {
	if files == nil {
		files = map[string]*flight.Recording{}
	}
	return &MemoryAccessor{
		files: files,
		saved: map[string]*flight.Recording{},
		loads: map[string][][]string{},
	}
}

// Load implements flight.Accessor.
func (m *MemoryAccessor) Load(_ context.Context, path string, names []string) (*flight.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loads[path] = append(m.loads[path], append([]string(nil), names...))
	rec, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("no such flight: %s", path)
	}

	out := &flight.Recording{
		Duration: rec.Duration,
		Start:    rec.Start,
		Frame:    maps.Clone(rec.Frame),
		Signals:  map[string]*signal.Signal{},
		Invalid:  maps.Clone(rec.Invalid),
	}
	if len(names) == 0 {
		maps.Copy(out.Signals, rec.Signals)
		return out, nil
	}
	for _, name := range names {
		if s, ok := rec.Signals[name]; ok {
			out.Signals[name] = s
		}
	}
	return out, nil
}

// Save implements flight.Accessor.
func (m *MemoryAccessor) Save(_ context.Context, path string, rec *flight.Recording) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[path] = rec
	return nil
}

// Saved returns the recording saved under path.
func (m *MemoryAccessor) Saved(path string) (*flight.Recording, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.saved[path]
	return rec, ok
}

// SavedCount returns how many recordings were saved.
func (m *MemoryAccessor) SavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

// Loads returns the name filters of every Load call for path.
func (m *MemoryAccessor) Loads(path string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads[path]
}
