package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/farxc/checklist_export/internal/catalog"
	"github.com/farxc/checklist_export/internal/checklist"
	"github.com/farxc/checklist_export/internal/db"
	"github.com/farxc/checklist_export/internal/export"
	"github.com/farxc/checklist_export/internal/store"
	"github.com/farxc/checklist_export/internal/templates"
	"github.com/farxc/checklist_export/internal/workbook"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func openStorage() (*sqlx.DB, *store.Storage, error) {
	conn, err := db.New(cfg.DB.Addr, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.MaxIdleTime)
	if err != nil {
		return nil, nil, err
	}
	return conn, store.NewStorage(conn), nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	const component = "Migrate"
	ctx, cancel := commandContext(cmd)
	defer cancel()

	conn, _, err := openStorage()
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := store.Migrate(ctx, conn); err != nil {
		return err
	}
	appLogger.Info(component, "Schema ready: driver=%s", conn.DriverName())
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	df, err := catalog.OpenFileAndDecode(args[0])
	if err != nil {
		return err
	}

	conn, storage, err := openStorage()
	if err != nil {
		return err
	}
	defer conn.Close()

	sum, err := catalog.LoadItems(ctx, catalog.Items(df), storage, appLogger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "catalog %s: %s\n", args[0], sum)
	return nil
}

func runRecordsImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	df, err := catalog.OpenFileAndDecode(args[0])
	if err != nil {
		return err
	}

	conn, storage, err := openStorage()
	if err != nil {
		return err
	}
	defer conn.Close()

	ids, sum, err := catalog.LoadRecords(ctx, catalog.Records(df), storage, appLogger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "registros %s: %s ids=%v\n", args[0], sum, ids)
	return nil
}

func runResponsesImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	df, err := catalog.OpenFileAndDecode(args[0])
	if err != nil {
		return err
	}

	conn, storage, err := openStorage()
	if err != nil {
		return err
	}
	defer conn.Close()

	sum, err := catalog.LoadResponses(ctx, recordID, catalog.Responses(df), storage, appLogger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "respuestas registro=%d: %s\n", recordID, sum)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	const component = "ExportCommand"
	ctx, cancel := commandContext(cmd)
	defer cancel()

	conn, storage, err := openStorage()
	if err != nil {
		return err
	}
	defer conn.Close()

	locator, err := templates.FromConfig(cfg.Template, appLogger)
	if err != nil {
		return err
	}

	svc := export.NewService(
		storage.Records,
		checklist.NewAggregator(checklist.NewStoreSource(storage), cfg.Export, appLogger),
		locator,
		workbook.NewWriter(cfg.Export, appLogger),
		cfg.Export.MaxObservationLength,
		appLogger,
	).WithHistory(storage.ExportHistory)

	art, err := svc.Export(ctx, export.Request{RecordID: recordID, Categories: categories, Trigger: store.TriggerTypeCLI})
	if err != nil {
		return err
	}
	for _, f := range art.Failures {
		appLogger.Warn(component, "Category skipped: category=%q error=%v", f.Category, f.Err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", outDir, err)
	}
	path := filepath.Join(outDir, art.Filename)
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s strategy=%s trace=%s id=%s\n", path, art.Strategy, art.Trace, art.ID)
	return nil
}
