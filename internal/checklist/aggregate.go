package checklist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/farxc/checklist_export/internal/config"
	"github.com/farxc/checklist_export/internal/logger"
	"github.com/farxc/checklist_export/internal/store"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrCategoryNotFound aborts aggregation of one category only.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrStoreUnavailable marks a data-store read failure; the request may
	// be retried.
	ErrStoreUnavailable = errors.New("data store unavailable")
)

// Source is the read side of the persistence collaborator. No transactional
// guarantee is assumed across the three calls.
type Source interface {
	GetCategoryByName(ctx context.Context, name string) (*store.Category, error)
	ListItemsByCategory(ctx context.Context, categoryName string) ([]store.ItemWithStage, error)
	ListResponsesByRecord(ctx context.Context, recordID int64) ([]store.Response, error)
}

type storeSource struct {
	s *store.Storage
}

// NewStoreSource adapts Storage to Source.
func NewStoreSource(s *store.Storage) Source {
	return &storeSource{s: s}
}

func (ss *storeSource) GetCategoryByName(ctx context.Context, name string) (*store.Category, error) {
	return ss.s.Categories.GetByName(ctx, name)
}

func (ss *storeSource) ListItemsByCategory(ctx context.Context, categoryName string) ([]store.ItemWithStage, error) {
	return ss.s.Items.ListByCategory(ctx, categoryName)
}

func (ss *storeSource) ListResponsesByRecord(ctx context.Context, recordID int64) ([]store.Response, error) {
	return ss.s.Responses.ListByRecord(ctx, recordID)
}

// RowSource says where an entry's row coordinate came from.
type RowSource int

const (
	RowUnresolved RowSource = iota
	RowExplicit
	RowTable
)

func (rs RowSource) String() string {
	switch rs {
	case RowExplicit:
		return "fila_excel"
	case RowTable:
		return "table"
	default:
		return "none"
	}
}

// Entry is one item joined with its (possibly absent) response.
type Entry struct {
	ItemID       int64
	Number       int
	Stage        string
	StageOrder   int
	Question     string
	Row          int
	RowSource    RowSource
	Answer       Answer
	Observations string
}

// Answered reports whether the entry carries a tri-state answer.
func (e Entry) Answered() bool {
	return e.Answer != Unset
}

// Resolved reports whether the entry has a row coordinate.
func (e Entry) Resolved() bool {
	return e.RowSource != RowUnresolved && e.Row > 0
}

// Section is the aggregated checklist of one category for one record.
type Section struct {
	Category string
	Sheet    string
	Layout   *Layout
	Entries  []Entry
}

// AnsweredNumbers lists item numbers with an answer, ascending.
func (s *Section) AnsweredNumbers() []int {
	var out []int
	for _, e := range s.Entries {
		if e.Answered() {
			out = append(out, e.Number)
		}
	}
	return out
}

// InlineAnswer is a caller-supplied answer keyed by item number. Each field
// that is set replaces the stored one for the duration of one export; a nil
// field keeps the stored value. An empty respuesta clears the stored answer.
type InlineAnswer struct {
	Item         int     `json:"item"`
	Answer       *Answer `json:"respuesta"`
	Observations *string `json:"observaciones"`
}

type Aggregator struct {
	source Source
	cfg    config.ExportConfig
	log    *logger.Logger
}

func NewAggregator(source Source, cfg config.ExportConfig, log *logger.Logger) *Aggregator {
	return &Aggregator{source: source, cfg: cfg, log: log}
}

/*
Aggregate builds the Section of one category for one record. The category,
its items and the record's responses are read concurrently and left-joined
in memory: items without a response stay unanswered and responses for items
outside the category are ignored. Each entry's row comes from fila_excel,
then from the category layout; entries with neither stay unresolved.
*/
func (a *Aggregator) Aggregate(ctx context.Context, recordID int64, category string, inline []InlineAnswer) (*Section, error) {
	const component = "Aggregator"

	name, _ := CanonicalCategory(category)
	layout, _ := LookupLayout(name)

	if a.cfg.ReadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.ReadTimeout)
		defer cancel()
	}

	var (
		cat       *store.Category
		items     []store.ItemWithStage
		responses []store.Response
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		c, err := a.source.GetCategoryByName(egCtx, name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrCategoryNotFound, name)
			}
			return fmt.Errorf("%w: get category: %w", ErrStoreUnavailable, err)
		}
		cat = c
		return nil
	})
	eg.Go(func() error {
		list, err := a.source.ListItemsByCategory(egCtx, name)
		if err != nil {
			return fmt.Errorf("%w: list items: %w", ErrStoreUnavailable, err)
		}
		items = list
		return nil
	})
	eg.Go(func() error {
		list, err := a.source.ListResponsesByRecord(egCtx, recordID)
		if err != nil {
			return fmt.Errorf("%w: list responses: %w", ErrStoreUnavailable, err)
		}
		responses = list
		return nil
	})

	if err := eg.Wait(); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			a.log.Warn(component, "Category not found: record=%d category=%q", recordID, category)
		} else {
			a.log.Error(component, "Store read failed: record=%d category=%q error=%v", recordID, name, err)
		}
		return nil, err
	}

	section := &Section{
		Category: cat.Name,
		Sheet:    strings.TrimSpace(cat.Sheet),
		Layout:   layout,
		Entries:  make([]Entry, 0, len(items)),
	}
	if section.Sheet == "" && layout != nil {
		section.Sheet = layout.Sheet
	}

	byItem := make(map[int64]store.Response, len(responses))
	for _, r := range responses {
		byItem[r.ItemID] = r
	}

	overrides := make(map[int]InlineAnswer, len(inline))
	for _, ia := range inline {
		overrides[ia.Item] = ia
	}

	matched := 0
	unresolved := 0
	for _, it := range items {
		e := Entry{
			ItemID:     it.ID,
			Number:     it.Number,
			Stage:      it.StageName,
			StageOrder: it.StageOrder,
			Question:   it.Question,
		}

		switch {
		case it.TemplateRow != nil && *it.TemplateRow > 0:
			e.Row, e.RowSource = *it.TemplateRow, RowExplicit
		default:
			if row, ok := layout.Row(it.Number); ok {
				e.Row, e.RowSource = row, RowTable
			}
		}
		if !e.Resolved() {
			unresolved++
			a.log.Warn(component, "Item has no template row: category=%q item=%d", section.Category, it.Number)
		}

		if r, ok := byItem[it.ID]; ok {
			matched++
			delete(byItem, it.ID)
			e.Observations = r.Observations
			if r.Answer != nil {
				ans, err := ParseAnswer(*r.Answer)
				if err != nil {
					a.log.Warn(component, "Ignoring stored answer: category=%q item=%d value=%q", section.Category, it.Number, *r.Answer)
				}
				e.Answer = ans
			}
		}

		if ia, ok := overrides[it.Number]; ok {
			if ia.Answer != nil {
				e.Answer = *ia.Answer
			}
			if ia.Observations != nil {
				e.Observations = *ia.Observations
			}
			delete(overrides, it.Number)
		}

		section.Entries = append(section.Entries, e)
	}

	sort.SliceStable(section.Entries, func(i, j int) bool {
		return section.Entries[i].Number < section.Entries[j].Number
	})

	for n := range overrides {
		a.log.Debug(component, "Inline answer for unknown item ignored: category=%q item=%d", section.Category, n)
	}

	a.log.Info(component, "Aggregated: record=%d category=%q items=%d responses=%d unresolved=%d",
		recordID, section.Category, len(section.Entries), matched, unresolved)
	return section, nil
}

// CategoryFailure records a category that could not be aggregated.
type CategoryFailure struct {
	Category string
	Err      error
}

/*
AggregateAll aggregates several categories for one record. A missing
category is recorded and skipped; a store failure aborts the whole call
since retrying the request is the only remedy.
*/
func (a *Aggregator) AggregateAll(ctx context.Context, recordID int64, categories []string, inline map[string][]InlineAnswer) ([]*Section, []CategoryFailure, error) {
	var (
		sections []*Section
		failures []CategoryFailure
	)

	inlineByCanon := make(map[string][]InlineAnswer, len(inline))
	for cat, answers := range inline {
		canon, _ := CanonicalCategory(cat)
		inlineByCanon[canon] = append(inlineByCanon[canon], answers...)
	}

	seen := make(map[string]bool, len(categories))
	for _, cat := range categories {
		canon, _ := CanonicalCategory(cat)
		if seen[canon] {
			continue
		}
		seen[canon] = true

		section, err := a.Aggregate(ctx, recordID, canon, inlineByCanon[canon])
		if err != nil {
			if errors.Is(err, ErrCategoryNotFound) {
				failures = append(failures, CategoryFailure{Category: cat, Err: err})
				continue
			}
			return nil, failures, err
		}
		sections = append(sections, section)
	}

	return sections, failures, nil
}
