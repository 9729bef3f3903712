package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/farxc/checklist_export/internal/config"
	"github.com/farxc/checklist_export/internal/export"
	"github.com/farxc/checklist_export/internal/logger"
	"github.com/farxc/checklist_export/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type exporter interface {
	Export(ctx context.Context, req export.Request) (*export.Artifact, error)
}

type categoryLister interface {
	List(ctx context.Context) ([]store.Category, error)
}

type historyLister interface {
	ListByRecord(ctx context.Context, recordID int64, limit int) ([]store.ExportHistory, error)
}

type application struct {
	config     *config.Config
	exporter   exporter
	categories categoryLister
	history    historyLister
	logger     *logger.Logger
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(app.config.Server.RequestTimeout))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/categorias", app.handleListCategories)
		r.Route("/registros/{id}", func(r chi.Router) {
			r.Get("/export", app.handleExportStored)
			r.Post("/export", app.handleExportInline)
			r.Get("/exportaciones", app.handleListExports)
		})
	})

	return r
}

// run serves until ctx is cancelled, then drains in-flight exports.
func (app *application) run(ctx context.Context, mux http.Handler) error {
	const component = "Server"

	srv := &http.Server{
		Addr:         app.config.Server.Addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(component, "Server started: addr=%s", app.config.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(component, "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
