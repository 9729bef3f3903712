package main

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/farxc/checklist_export/internal/checklist"
	"github.com/farxc/checklist_export/internal/export"
	"github.com/farxc/checklist_export/internal/response"
	"github.com/farxc/checklist_export/internal/store"
)

type inlineExportRequest struct {
	Categories map[string][]checklist.InlineAnswer `json:"categorias"`
}

func (req inlineExportRequest) validate() error {
	if len(req.Categories) == 0 {
		return errors.New("categorias must list at least one category")
	}
	for name, answers := range req.Categories {
		if name == "" {
			return errors.New("category name must not be empty")
		}
		seen := make(map[int]bool, len(answers))
		for _, a := range answers {
			if a.Item < 1 {
				return fmt.Errorf("category %q: item must be a positive number", name)
			}
			if seen[a.Item] {
				return fmt.Errorf("category %q: item %d listed twice", name, a.Item)
			}
			seen[a.Item] = true
		}
	}
	return nil
}

func (app *application) handleExportStored(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	app.export(w, r, export.Request{RecordID: id, Categories: parseCategories(r), Trigger: store.TriggerTypeAPI})
}

func (app *application) handleExportInline(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body inlineExportRequest
	if err := readJSON(w, r, &body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := body.validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories := make([]string, 0, len(body.Categories))
	for name := range body.Categories {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	app.export(w, r, export.Request{RecordID: id, Categories: categories, Inline: body.Categories, Trigger: store.TriggerTypeAPI})
}

func (app *application) export(w http.ResponseWriter, r *http.Request, req export.Request) {
	const component = "ExportHandler"

	art, err := app.exporter.Export(r.Context(), req)
	if err != nil {
		app.writeExportError(w, req, err)
		return
	}

	for _, f := range art.Failures {
		app.logger.Warn(component, "Category skipped: record=%d category=%q error=%v", req.RecordID, f.Category, f.Err)
	}

	h := w.Header()
	h.Set("Content-Type", art.ContentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	h.Set("Content-Length", strconv.Itoa(len(art.Data)))
	h.Set("X-Export-Strategy", string(art.Strategy))
	h.Set("X-Export-ID", art.ID.String())
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(art.Data); err != nil {
		app.logger.Warn(component, "Failed to write export body: id=%s error=%v", art.ID, err)
	}
}

func (app *application) writeExportError(w http.ResponseWriter, req export.Request, err error) {
	const component = "ExportHandler"

	switch {
	case errors.Is(err, export.ErrRecordNotFound):
		writeJSONError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, export.ErrNoCategories):
		writeJSONError(w, http.StatusNotFound, "no known category to export", req.Categories...)
	case errors.Is(err, checklist.ErrStoreUnavailable):
		app.logger.Error(component, "Export aborted on store failure: record=%d error=%v", req.RecordID, err)
		w.Header().Set("Retry-After", "5")
		writeJSONError(w, http.StatusServiceUnavailable, "data store temporarily unavailable, retry later")
	default:
		app.logger.Error(component, "Export failed: record=%d error=%v", req.RecordID, err)
		writeJSONError(w, http.StatusInternalServerError, "export failed")
	}
}

func (app *application) handleListCategories(w http.ResponseWriter, r *http.Request) {
	const component = "CategoryHandler"

	cats, err := app.categories.List(r.Context())
	if err != nil {
		app.logger.Error(component, "Failed to list categories: error=%v", err)
		writeJSONError(w, http.StatusServiceUnavailable, "data store temporarily unavailable, retry later")
		return
	}

	out := make([]response.CategorySummary, 0, len(cats))
	for _, c := range cats {
		s := response.CategorySummary{Name: c.Name, Sheet: c.Sheet, Active: c.Active}
		if layout, ok := checklist.LookupLayout(c.Name); ok {
			s.HasLayout = true
			s.Items = len(layout.Rows)
			if s.Sheet == "" {
				s.Sheet = layout.Sheet
			}
		}
		out = append(out, s)
	}

	writeJSON(w, http.StatusOK, response.APIResponse[[]response.CategorySummary]{Success: true, Data: out})
}

func (app *application) handleListExports(w http.ResponseWriter, r *http.Request) {
	const component = "HistoryHandler"

	id, err := parseID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 500 {
			writeJSONError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
	}

	rows, err := app.history.ListByRecord(r.Context(), id, limit)
	if err != nil {
		app.logger.Error(component, "Failed to list export history: record=%d error=%v", id, err)
		writeJSONError(w, http.StatusServiceUnavailable, "data store temporarily unavailable, retry later")
		return
	}

	writeJSON(w, http.StatusOK, response.APIResponse[[]store.ExportHistory]{Success: true, Data: rows})
}
