package workbook

import (
	"errors"
	"fmt"

	"github.com/farxc/checklist_export/internal/checklist"
	"github.com/farxc/checklist_export/internal/config"
	"github.com/farxc/checklist_export/internal/logger"
	"github.com/farxc/checklist_export/internal/store"
	"github.com/xuri/excelize/v2"
)

// ErrSheetMissing means the template has no sheet for a category.
var ErrSheetMissing = errors.New("template sheet missing")

const dateLayout = "02/01/2006"

// Writer fills a loaded template. It only touches the header cells and the
// mark/observation cells of answered rows.
type Writer struct {
	marker string
	maxObs int
	log    *logger.Logger
}

func NewWriter(cfg config.ExportConfig, log *logger.Logger) *Writer {
	marker := cfg.Marker
	if marker == "" {
		marker = config.DefaultMarker
	}
	return &Writer{marker: marker, maxObs: cfg.MaxObservationLength, log: log}
}

// Skip is an entry the writer could not place.
type Skip struct {
	Item   int
	Reason string
}

// Report summarizes one WriteSection call.
type Report struct {
	Sheet        string
	Marked       int
	Observations int
	Skipped      []Skip
}

// HasSheet reports whether f contains sheet.
func HasSheet(f *excelize.File, sheet string) bool {
	idx, err := f.GetSheetIndex(sheet)
	return err == nil && idx >= 0
}

// WriteHeader fills the contract identification cells of the layout.
func (w *Writer) WriteHeader(f *excelize.File, sheet string, layout *checklist.Layout, rec *store.Record) error {
	if layout == nil || rec == nil {
		return nil
	}
	if !HasSheet(f, sheet) {
		return fmt.Errorf("%w: %q", ErrSheetMissing, sheet)
	}

	values := []struct {
		at    checklist.Coordinate
		value any
	}{
		{layout.Header.ContractNumber, rec.ContractNumber},
		{layout.Header.Contractor, rec.Contractor},
		{layout.Header.Object, rec.Object},
		{layout.Header.Value, rec.Value},
		{layout.Header.SignedAt, formatDate(rec)},
	}
	for _, v := range values {
		cell, err := v.at.Cell()
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v.value); err != nil {
			return fmt.Errorf("header cell %s: %w", cell, err)
		}
	}
	return nil
}

/*
WriteSection marks every answered entry of section on sheet. Unanswered
entries leave their row untouched. An entry without a row, or whose cell
cannot be written, is skipped and logged; the remaining entries are still
written. The returned error is reserved for a missing sheet.
*/
func (w *Writer) WriteSection(f *excelize.File, sheet string, section *checklist.Section) (Report, error) {
	const component = "CellWriter"
	rep := Report{Sheet: sheet}

	if !HasSheet(f, sheet) {
		return rep, fmt.Errorf("%w: %q", ErrSheetMissing, sheet)
	}

	for _, e := range section.Entries {
		obs := NormalizeObservations(e.Observations, w.maxObs)
		if !e.Answered() && obs == "" {
			continue
		}
		if !e.Resolved() {
			rep.Skipped = append(rep.Skipped, Skip{Item: e.Number, Reason: "no template row"})
			w.log.Warn(component, "Skipping unmapped item: sheet=%q item=%d", sheet, e.Number)
			continue
		}

		marked, wroteObs, err := w.writeEntry(f, sheet, e, obs)
		if err != nil {
			rep.Skipped = append(rep.Skipped, Skip{Item: e.Number, Reason: err.Error()})
			w.log.Error(component, "Failed to write item: sheet=%q item=%d row=%d error=%v", sheet, e.Number, e.Row, err)
			continue
		}
		if marked {
			rep.Marked++
		}
		if wroteObs {
			rep.Observations++
		}
	}

	w.log.Info(component, "Section written: sheet=%q marked=%d observations=%d skipped=%d",
		sheet, rep.Marked, rep.Observations, len(rep.Skipped))
	return rep, nil
}

func (w *Writer) writeEntry(f *excelize.File, sheet string, e checklist.Entry, obs string) (marked, wroteObs bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic writing row %d: %v", e.Row, r)
		}
	}()

	if at, ok := checklist.MarkAt(e.Row, e.Answer); ok {
		cell, err := at.Cell()
		if err != nil {
			return false, false, err
		}
		if err := f.SetCellValue(sheet, cell, w.marker); err != nil {
			return false, false, fmt.Errorf("mark %s: %w", cell, err)
		}
		marked = true
	}

	if obs != "" {
		cell, err := checklist.ObservationsAt(e.Row).Cell()
		if err != nil {
			return marked, false, err
		}
		if err := f.SetCellValue(sheet, cell, obs); err != nil {
			return marked, false, fmt.Errorf("observations %s: %w", cell, err)
		}
		wroteObs = true
	}

	return marked, wroteObs, nil
}

func formatDate(rec *store.Record) string {
	if rec.SignedAt.IsZero() {
		return ""
	}
	return rec.SignedAt.Format(dateLayout)
}
