package report

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/flightderive/internal/ctxlog"
	"github.com/xuri/excelize/v2"
)

const (
	flightsSheet = "Flights"
	summarySheet = "Summary"
)

var flightsHeader = []any{"Run", "Timestamp", "Stage", "Profile", "Path", "Seconds", "Status", "Error"}

// Workbook collects timings and writes an .xlsx file when the batch ends.
type Workbook struct {
	path string

	mu      sync.Mutex
	timings []Timing
}

// NewWorkbook returns a sink writing to path.
func NewWorkbook(path string) *Workbook {
	return &Workbook{path: path}
}

// RecordTiming implements Sink.
func (w *Workbook) RecordTiming(_ context.Context, t Timing) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timings = append(w.timings, t)
}

// RecordBatch implements Sink. It writes the workbook.
func (w *Workbook) RecordBatch(ctx context.Context, s BatchSummary) {
	w.mu.Lock()
	timings := append([]Timing(nil), w.timings...)
	w.mu.Unlock()

	if err := w.write(timings, s); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to write batch workbook.", "path", w.path, "error", err)
		return
	}
	ctxlog.FromContext(ctx).Debug("Batch workbook written.", "path", w.path, "flights", len(timings))
}

func (w *Workbook) write(timings []Timing, s BatchSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", flightsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(flightsSheet, "A1", &flightsHeader); err != nil {
		return err
	}
	for i, t := range timings {
		row := []any{
			t.RunID, t.Timestamp.UTC().Format(timeLayout), t.Stage, t.Profile, t.Path,
			t.Elapsed.Seconds(), string(t.Status), t.Error,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(flightsSheet, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	summary := [][]any{
		{"Run", s.RunID},
		{"Timestamp", s.Timestamp.UTC().Format(timeLayout)},
		{"Stage", s.Stage},
		{"Profile", s.Profile},
		{"Comment", s.Comment},
		{"Repository", s.Repository},
		{"Input directory", s.InputDir},
		{"Output directory", s.OutputDir},
		{"Files", s.FileCount},
		{"OK", s.OK},
		{"Failed", s.Fail},
		{"Seconds", s.Elapsed.Seconds()},
		{"Aborted", s.Aborted},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}

	return f.SaveAs(w.path)
}
