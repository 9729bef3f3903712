package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/farxc/checklist_export/internal/checklist"
	"github.com/farxc/checklist_export/internal/logger"
	"github.com/farxc/checklist_export/internal/store"
	"github.com/farxc/checklist_export/internal/templates"
	"github.com/farxc/checklist_export/internal/workbook"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	ErrRecordNotFound = errors.New("record not found")
	// ErrNoCategories means none of the requested categories exist.
	ErrNoCategories = errors.New("no known category to export")
	// ErrExportFailed means both the template and the basic path failed.
	ErrExportFailed = errors.New("export failed")
)

// TemplateLocator yields the template bytes, or an unavailable result.
type TemplateLocator interface {
	Locate(ctx context.Context) templates.Result
}

// RecordGetter loads the audited contract.
type RecordGetter interface {
	GetByID(ctx context.Context, id int64) (*store.Record, error)
}

// HistoryRecorder keeps a log of produced exports.
type HistoryRecorder interface {
	Insert(ctx context.Context, h *store.ExportHistory) error
}

// Request selects what to export. Empty Categories means the record's own.
type Request struct {
	RecordID   int64
	Categories []string
	Inline     map[string][]checklist.InlineAnswer
	// Trigger names the caller in the export history.
	Trigger string
}

// Artifact is a finished export.
type Artifact struct {
	ID             uuid.UUID
	Filename       string
	ContentType    string
	Data           []byte
	Strategy       Strategy
	Trace          Trace
	TemplateSource string
	Sections       []*checklist.Section
	Failures       []checklist.CategoryFailure
	Skipped        []workbook.Skip
}

type Service struct {
	records RecordGetter
	agg     *checklist.Aggregator
	locator TemplateLocator
	writer  *workbook.Writer
	history HistoryRecorder
	maxObs  int
	log     *logger.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

func NewService(records RecordGetter, agg *checklist.Aggregator, locator TemplateLocator, writer *workbook.Writer, maxObs int, log *logger.Logger) *Service {
	return &Service{
		records: records,
		agg:     agg,
		locator: locator,
		writer:  writer,
		maxObs:  maxObs,
		log:     log,
		now:     time.Now,
		newID:   uuid.New,
	}
}

// WithHistory makes every successful export leave a history row.
func (s *Service) WithHistory(h HistoryRecorder) *Service {
	s.history = h
	return s
}

/*
Export aggregates the requested categories and renders them. The template
path is tried first; if the template is unavailable, or fails while being
filled, the basic sheet is rendered instead, exactly once. Missing records
and store failures are returned before any rendering starts.
*/
func (s *Service) Export(ctx context.Context, req Request) (*Artifact, error) {
	const component = "Exporter"

	rec, err := s.records.GetByID(ctx, req.RecordID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrRecordNotFound, req.RecordID)
		}
		s.log.Error(component, "Record lookup failed: record=%d error=%v", req.RecordID, err)
		return nil, fmt.Errorf("%w: get record: %w", checklist.ErrStoreUnavailable, err)
	}

	categories := req.Categories
	if len(categories) == 0 {
		categories = []string{rec.CategoryName}
	}

	sections, failures, err := s.agg.AggregateAll(ctx, rec.ID, categories, req.Inline)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoCategories, categories)
	}

	art := &Artifact{
		ID:          s.newID(),
		Filename:    Filename(rec, s.now()),
		ContentType: ContentType,
		Sections:    sections,
		Failures:    failures,
		Trace:       newTrace(),
	}

	tpl := s.locator.Locate(ctx)
	if tpl.Available() {
		art.Trace.advance(StateTemplateAvailable)
		art.TemplateSource = tpl.Source

		data, skipped, err := s.renderTemplate(tpl.Data, rec, sections)
		if err == nil {
			art.Trace.advance(StateExportedWithTemplate)
			art.Strategy = StrategyTemplate
			art.Data = data
			art.Skipped = skipped
			s.done(ctx, art, rec, req)
			return art, nil
		}

		s.log.Warn(component, "Template rendering failed, using basic export: record=%d source=%s error=%v", rec.ID, tpl.Source, err)
		art.Trace.advance(StateTemplateFailedAtRuntime)
	} else {
		art.Trace.advance(StateTemplateUnavailable)
	}

	data, err := s.renderBasic(rec, sections)
	if err != nil {
		art.Trace.advance(StateFailed)
		s.log.Error(component, "Basic export failed: record=%d trace=%s error=%v", rec.ID, art.Trace, err)
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	art.Trace.advance(StateExportedBasic)
	art.Strategy = StrategyBasic
	art.Data = data
	s.done(ctx, art, rec, req)
	return art, nil
}

func (s *Service) renderTemplate(data []byte, rec *store.Record, sections []*checklist.Section) (out []byte, skipped []workbook.Skip, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while filling template: %v", r)
		}
	}()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	for _, sec := range sections {
		if sec.Sheet == "" || !workbook.HasSheet(f, sec.Sheet) {
			return nil, nil, fmt.Errorf("%w: category=%q sheet=%q", workbook.ErrSheetMissing, sec.Category, sec.Sheet)
		}
		if err := s.writer.WriteHeader(f, sec.Sheet, sec.Layout, rec); err != nil {
			return nil, nil, err
		}
		rep, err := s.writer.WriteSection(f, sec.Sheet, sec)
		if err != nil {
			return nil, nil, err
		}
		skipped = append(skipped, rep.Skipped...)
	}

	if idx, err := f.GetSheetIndex(sections[0].Sheet); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, nil, fmt.Errorf("serialize template: %w", err)
	}
	return buf.Bytes(), skipped, nil
}

func (s *Service) renderBasic(rec *store.Record, sections []*checklist.Section) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while building basic sheet: %v", r)
		}
	}()

	f, err := workbook.BuildBasic(rec, sections, s.maxObs)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize basic sheet: %w", err)
	}
	return buf.Bytes(), nil
}

// done logs the artifact and records it. A history failure never fails the
// export.
func (s *Service) done(ctx context.Context, art *Artifact, rec *store.Record, req Request) {
	const component = "Exporter"
	s.log.Info(component, "Export ready: id=%s record=%d strategy=%s trace=%s sections=%d skipped=%d bytes=%d",
		art.ID, rec.ID, art.Strategy, art.Trace, len(art.Sections), len(art.Skipped), len(art.Data))

	if s.history == nil {
		return
	}

	names := make([]string, len(art.Sections))
	for i, sec := range art.Sections {
		names[i] = sec.Category
	}
	trigger := req.Trigger
	if trigger == "" {
		trigger = store.TriggerTypeAPI
	}

	h := &store.ExportHistory{
		ExportID:       art.ID.String(),
		RecordID:       rec.ID,
		Categories:     strings.Join(names, ", "),
		Strategy:       string(art.Strategy),
		Trace:          art.Trace.String(),
		TemplateSource: art.TemplateSource,
		Filename:       art.Filename,
		Trigger:        trigger,
		Skipped:        len(art.Skipped),
		CreatedAt:      s.now().UTC(),
	}
	if err := s.history.Insert(ctx, h); err != nil {
		s.log.Warn(component, "Failed to record export history: id=%s error=%v", art.ID, err)
	}
}

// Filename is checklist_<contract-slug>_<YYYYMMDD>.xlsx; records without a
// usable contract number fall back to their id.
func Filename(rec *store.Record, at time.Time) string {
	slug := checklist.Slug(rec.ContractNumber)
	if slug == "" {
		slug = "registro-" + strconv.FormatInt(rec.ID, 10)
	}
	return fmt.Sprintf("checklist_%s_%s.xlsx", slug, at.Format("20060102"))
}
