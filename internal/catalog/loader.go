package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/farxc/checklist_export/internal/checklist"
	"github.com/farxc/checklist_export/internal/logger"
	"github.com/farxc/checklist_export/internal/store"
)

// Summary counts what a load did with its input rows.
type Summary struct {
	Inserted int
	Updated  int
	Existing int
	Skipped  int
}

func (s Summary) String() string {
	return fmt.Sprintf("inserted=%d updated=%d existing=%d skipped=%d", s.Inserted, s.Updated, s.Existing, s.Skipped)
}

func canonical(name string) string {
	canon, _ := checklist.CanonicalCategory(name)
	return canon
}

type categoryCache struct {
	storage *store.Storage
	byName  map[string]*store.Category
}

func newCategoryCache(storage *store.Storage) *categoryCache {
	return &categoryCache{storage: storage, byName: make(map[string]*store.Category)}
}

func (c *categoryCache) get(ctx context.Context, name string) (*store.Category, error) {
	if cat, ok := c.byName[name]; ok {
		return cat, nil
	}
	cat, err := c.storage.Categories.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	c.byName[name] = cat
	return cat, nil
}

func (c *categoryCache) getOrCreate(ctx context.Context, name, sheet string) (*store.Category, error) {
	cat, err := c.get(ctx, name)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return cat, err
	}

	if sheet == "" {
		if layout, ok := checklist.LookupLayout(name); ok {
			sheet = layout.Sheet
		}
	}
	cat = &store.Category{Name: name, Sheet: sheet, Active: true}
	if err := c.storage.Categories.Insert(ctx, cat); err != nil {
		return nil, err
	}
	c.byName[name] = cat
	return cat, nil
}

/*
LoadItems provisions categories, stages and items from catalog rows.
Category names are stored in canonical form. Items already present for
their category are left as they are, so loading the same file twice is a
no-op. Invalid rows are logged and skipped; a store failure stops the load.
*/
func LoadItems(ctx context.Context, rows []ItemRow, storage *store.Storage, appLogger *logger.Logger) (Summary, error) {
	const component = "CatalogLoader"
	appLogger.Info(component, "Starting catalog load: rows=%d", len(rows))

	var sum Summary
	cats := newCategoryCache(storage)
	stages := make(map[string]int64)
	existing := make(map[int64]map[int]bool)

	for i, row := range rows {
		line := i + 2
		if row.Category == "" || row.Stage == "" || row.Question == "" || row.Number < 1 {
			appLogger.Warn(component, "Skipping incomplete row: line=%d row=%+v", line, row)
			sum.Skipped++
			continue
		}

		name := canonical(row.Category)
		cat, err := cats.getOrCreate(ctx, name, row.Sheet)
		if err != nil {
			return sum, fmt.Errorf("line %d: %w", line, err)
		}

		numbers, ok := existing[cat.ID]
		if !ok {
			items, err := storage.Items.ListByCategory(ctx, cat.Name)
			if err != nil {
				return sum, fmt.Errorf("line %d: %w", line, err)
			}
			numbers = make(map[int]bool, len(items))
			for _, it := range items {
				numbers[it.Number] = true
			}
			existing[cat.ID] = numbers
		}
		if numbers[row.Number] {
			sum.Existing++
			continue
		}

		stageKey := fmt.Sprintf("%d/%s", cat.ID, row.Stage)
		stageID, ok := stages[stageKey]
		if !ok {
			st := store.Stage{CategoryID: cat.ID, Name: row.Stage, Order: row.StageOrder}
			if err := storage.Stages.GetOrCreate(ctx, &st); err != nil {
				return sum, fmt.Errorf("line %d: %w", line, err)
			}
			stageID = st.ID
			stages[stageKey] = stageID
		}

		item := store.Item{
			CategoryID:  cat.ID,
			StageID:     stageID,
			Number:      row.Number,
			Question:    row.Question,
			TemplateRow: row.TemplateRow,
		}
		if err := storage.Items.Insert(ctx, &item); err != nil {
			appLogger.Error(component, "Failed to insert item: line=%d category=%q item=%d error=%v", line, cat.Name, row.Number, err)
			sum.Skipped++
			continue
		}
		numbers[row.Number] = true
		sum.Inserted++
	}

	appLogger.Info(component, "Catalog load completed: %s", sum)
	return sum, nil
}

// LoadRecords inserts registros. Rows naming an unknown category or without
// a contract number or signing date are skipped.
func LoadRecords(ctx context.Context, rows []RecordRow, storage *store.Storage, appLogger *logger.Logger) ([]int64, Summary, error) {
	const component = "RecordLoader"
	appLogger.Info(component, "Starting record load: rows=%d", len(rows))

	var (
		sum Summary
		ids []int64
	)
	cats := newCategoryCache(storage)

	for i, row := range rows {
		line := i + 2
		signed := ParseDate(row.SignedAt)
		if row.ContractNumber == "" || signed.IsZero() {
			appLogger.Warn(component, "Skipping incomplete row: line=%d contract=%q date=%q", line, row.ContractNumber, row.SignedAt)
			sum.Skipped++
			continue
		}

		cat, err := cats.get(ctx, canonical(row.Category))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				appLogger.Warn(component, "Skipping row with unknown category: line=%d category=%q", line, row.Category)
				sum.Skipped++
				continue
			}
			return ids, sum, fmt.Errorf("line %d: %w", line, err)
		}

		rec := store.Record{
			ContractNumber: row.ContractNumber,
			Contractor:     row.Contractor,
			Object:         row.Object,
			Value:          ParseFloat(row.Value),
			SignedAt:       signed,
			CategoryID:     cat.ID,
		}
		if err := storage.Records.Insert(ctx, &rec); err != nil {
			return ids, sum, fmt.Errorf("line %d: %w", line, err)
		}
		ids = append(ids, rec.ID)
		sum.Inserted++
	}

	appLogger.Info(component, "Record load completed: %s", sum)
	return ids, sum, nil
}

/*
LoadResponses stores the answers of one registro. Each row is matched to its
item by category and number and written through the response upsert, so a
re-import updates answers in place. Unknown items and unreadable answers are
skipped; a blank answer clears the stored one.
*/
func LoadResponses(ctx context.Context, recordID int64, rows []ResponseRow, storage *store.Storage, appLogger *logger.Logger) (Summary, error) {
	const component = "ResponseLoader"
	appLogger.Info(component, "Starting response load: record=%d rows=%d", recordID, len(rows))

	var sum Summary
	if _, err := storage.Records.GetByID(ctx, recordID); err != nil {
		return sum, err
	}

	itemIDs := make(map[string]map[int]int64)
	for i, row := range rows {
		line := i + 2
		name := canonical(row.Category)

		ids, ok := itemIDs[name]
		if !ok {
			items, err := storage.Items.ListByCategory(ctx, name)
			if err != nil {
				return sum, fmt.Errorf("line %d: %w", line, err)
			}
			ids = make(map[int]int64, len(items))
			for _, it := range items {
				ids[it.Number] = it.ID
			}
			itemIDs[name] = ids
		}

		itemID, ok := ids[row.Number]
		if !ok {
			appLogger.Warn(component, "Skipping unknown item: line=%d category=%q item=%d", line, row.Category, row.Number)
			sum.Skipped++
			continue
		}

		answer, err := checklist.ParseAnswer(row.Answer)
		if err != nil {
			appLogger.Warn(component, "Skipping unreadable answer: line=%d item=%d error=%v", line, row.Number, err)
			sum.Skipped++
			continue
		}

		resp := store.Response{ItemID: itemID, RecordID: recordID, Observations: row.Observations}
		if answer != checklist.Unset {
			code := answer.Code()
			resp.Answer = &code
		}

		created, err := storage.Responses.Upsert(ctx, &resp)
		if err != nil {
			return sum, fmt.Errorf("line %d: %w", line, err)
		}
		if created {
			sum.Inserted++
		} else {
			sum.Updated++
		}
	}

	appLogger.Info(component, "Response load completed: record=%d %s", recordID, sum)
	return sum, nil
}
