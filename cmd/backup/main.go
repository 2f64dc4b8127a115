package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"saodo/internal/config"
	"saodo/internal/database"
	"saodo/internal/logging"
	"saodo/internal/service"
	"saodo/migrations"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	// Export flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: saodo_backup_YYYYMMDD_HHMMSS.json)")

	// Import flags
	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")
	importYes := importCmd.Bool("yes", false, "Skip the confirmation prompt for -clear")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fatal("config_load_failed", err)
	}

	logger := logging.New(os.Stderr, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Environment: cfg.Env})
	slog.SetDefault(logger)

	ctx := context.Background()

	// Initialize database
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		fatal("database_init_failed", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if _, err := db.RunMigrations(ctx, migrations.FS); err != nil {
		fatal("migrations_failed", err)
	}

	backupService := service.NewBackupService(db, logger)

	switch os.Args[1] {
	case "export":
		_ = exportCmd.Parse(os.Args[2:])
		if err := handleExport(ctx, backupService, *exportOutput); err != nil {
			fatal("export_failed", err)
		}

	case "import":
		_ = importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Fprintln(os.Stderr, "Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		if err := handleImport(ctx, backupService, *importInput, *importClear, *importYes); err != nil {
			fatal("import_failed", err)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func fatal(event string, err error) {
	slog.Error(event, slog.Any("err", err))
	os.Exit(1)
}

func handleExport(ctx context.Context, backupService *service.BackupService, outputPath string) error {
	// Generate default filename if not provided
	if outputPath == "" {
		outputPath = fmt.Sprintf("saodo_backup_%s.json", time.Now().Format("20060102_150405"))
	}

	// Ensure directory exists
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}

	data, err := backupService.ExportToWriter(ctx, f)
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return err
	}
	slog.Info("export_complete",
		slog.String("path", outputPath),
		slog.Int("classes", len(data.Classes)),
		slog.Int("logs", len(data.Logs)),
		slog.Float64("size_mb", float64(info.Size())/1024/1024),
	)
	return nil
}

func handleImport(ctx context.Context, backupService *service.BackupService, inputPath string, clearData, assumeYes bool) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	if clearData && !assumeYes {
		fmt.Print("WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(answer) != "yes" {
			slog.Info("import_cancelled")
			return nil
		}
	}

	data, err := backupService.ImportFromReader(ctx, f, clearData)
	if err != nil {
		return err
	}
	slog.Info("import_complete",
		slog.String("path", inputPath),
		slog.Bool("cleared", clearData),
		slog.Int("users", len(data.Users)),
		slog.Int("classes", len(data.Classes)),
		slog.Int("logs", len(data.Logs)),
	)
	return nil
}

func printUsage() {
	fmt.Println("Sao Đỏ Database Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export database to JSON file")
	fmt.Println("  backup import [options]    Import database from JSON file")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: saodo_backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -clear            Clear existing data before import (WARNING: destructive)")
	fmt.Println("  -yes              Do not prompt before clearing")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  backup export -output backups/week12.json")
	fmt.Println("  backup import -input backup.json")
	fmt.Println("  backup import -input backup.json -clear")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./saodo.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
}
