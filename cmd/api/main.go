package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/farxc/checklist_export/internal/checklist"
	"github.com/farxc/checklist_export/internal/config"
	"github.com/farxc/checklist_export/internal/db"
	"github.com/farxc/checklist_export/internal/env"
	"github.com/farxc/checklist_export/internal/export"
	"github.com/farxc/checklist_export/internal/logger"
	"github.com/farxc/checklist_export/internal/store"
	"github.com/farxc/checklist_export/internal/templates"
	"github.com/farxc/checklist_export/internal/workbook"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load(env.GetString("CONFIG_PATH", "config.yaml"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	appLogger, err := logger.New(logger.ParseLevel(cfg.Log.Level), cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	const component = "Main"

	db, err := db.New(
		cfg.DB.Addr,
		cfg.DB.MaxOpenConns,
		cfg.DB.MaxIdleConns,
		cfg.DB.MaxIdleTime)

	if err != nil {
		appLogger.Fatal(component, "Database connection failed: error=%v", err)
	}
	defer db.Close()
	appLogger.Info(component, "Database connection pool established")

	storage := store.NewStorage(db)

	locator, err := templates.FromConfig(cfg.Template, appLogger)
	if err != nil {
		appLogger.Fatal(component, "Template locator setup failed: error=%v", err)
	}
	appLogger.Info(component, "Template sources: %v", locator.Sources())

	aggregator := checklist.NewAggregator(checklist.NewStoreSource(storage), cfg.Export, appLogger)
	writer := workbook.NewWriter(cfg.Export, appLogger)

	app := &application{
		config:     cfg,
		exporter:   export.NewService(storage.Records, aggregator, locator, writer, cfg.Export.MaxObservationLength, appLogger).WithHistory(storage.ExportHistory),
		categories: storage.Categories,
		history:    storage.ExportHistory,
		logger:     appLogger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := app.mount()

	if err := app.run(ctx, mux); err != nil {
		appLogger.Fatal(component, "Server stopped: error=%v", err)
	}
}
