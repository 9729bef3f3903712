package main

import (
	"fmt"
	"os"
	"time"

	"github.com/farxc/checklist_export/internal/config"
	"github.com/farxc/checklist_export/internal/env"
	"github.com/farxc/checklist_export/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	timeout    time.Duration

	cfg       *config.Config
	appLogger *logger.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "checklistctl",
	Short: "Provision and export municipal procurement checklists",
	Long: `checklistctl manages the checklist catalog and produces the regulator
spreadsheet without going through the HTTP API.

Files are semicolon separated, Windows-1252 unless they start with a UTF-8 BOM.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; the environment may already be set.
		_ = godotenv.Load()

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		level := logger.ParseLevel(cfg.Log.Level)
		if verbose {
			level = logger.LevelDebug
		}
		appLogger, err = logger.New(level, cfg.Log.Format)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLogger != nil {
			appLogger.Sync()
		}
	},
}

// migrateCmd creates the checklist tables
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the checklist tables",
	RunE:  runMigrate,
}

// seedCmd loads the category/stage/item catalog
var seedCmd = &cobra.Command{
	Use:   "seed <catalog.csv>",
	Short: "Load categories, stages and items from a catalog file",
	Long: `Loads the checklist catalog. Expected columns:

  categoria;hoja;etapa;orden_etapa;numero;pregunta;fila_excel

Items already present for their category are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Manage audited contract records",
}

// recordsImportCmd loads registros
var recordsImportCmd = &cobra.Command{
	Use:   "import <registros.csv>",
	Short: "Import contract records",
	Long: `Imports registros. Expected columns:

  numero_contrato;contratista;objeto;valor;fecha_suscripcion;categoria`,
	Args: cobra.ExactArgs(1),
	RunE: runRecordsImport,
}

var responsesCmd = &cobra.Command{
	Use:   "responses",
	Short: "Manage checklist responses",
}

// responsesImportCmd upserts the answers of one registro
var responsesImportCmd = &cobra.Command{
	Use:   "import <respuestas.csv>",
	Short: "Import the answers of one record",
	Long: `Imports answers for the record given by --registro. Expected columns:

  categoria;numero;respuesta;observaciones

Re-importing a file updates the stored answers in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runResponsesImport,
}

// exportCmd writes the spreadsheet to disk
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a record's checklist to an xlsx file",
	Long: `Runs the same template-or-basic export as the API and writes the file
into --out. The template is looked up with the configured sources.`,
	RunE: runExport,
}

var (
	recordID   int64
	categories []string
	outDir     string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", env.GetString("CONFIG_PATH", "config.yaml"), "Path to the YAML configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	responsesImportCmd.Flags().Int64Var(&recordID, "registro", 0, "Record id the answers belong to")
	responsesImportCmd.MarkFlagRequired("registro")

	exportCmd.Flags().Int64Var(&recordID, "registro", 0, "Record id to export")
	exportCmd.Flags().StringSliceVar(&categories, "categoria", nil, "Category to export (repeatable, default: the record's own)")
	exportCmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory the file is written to")
	exportCmd.MarkFlagRequired("registro")

	recordsCmd.AddCommand(recordsImportCmd)
	responsesCmd.AddCommand(responsesImportCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(responsesCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
