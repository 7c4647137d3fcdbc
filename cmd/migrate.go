package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediatag/tagger-api/internal/database"
	"github.com/mediatag/tagger-api/internal/models"
	"github.com/mediatag/tagger-api/pkg/config"
)

// migratedModels lists every model in schema order
var migratedModels = []any{
	&models.Video{},
	&models.Scene{},
	&models.Image{},
	&models.Tag{},
	&models.VideoTag{},
	&models.SceneTag{},
	&models.ImageTag{},
	&models.Job{},
}

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Manage the database schema for the Media Tagger API.

Available subcommands:
  up      - Apply the schema, creating or altering tables as needed
  status  - Show which tables exist`,
}

// migrateUpCmd applies the schema
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply the schema",
	Long: `Create or alter all tables so the database matches the current models.

Safe to run repeatedly; existing data is preserved.`,
	RunE: runMigrateUp,
}

// migrateStatusCmd shows which tables exist
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(migratedModels...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Schema applied to %s\n", cfg.Database.Path)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database: %s\n", cfg.Database.Path)
	for _, model := range migratedModels {
		name := fmt.Sprintf("%T", model)
		if t, ok := model.(interface{ TableName() string }); ok {
			name = t.TableName()
		}
		marker := "missing"
		if db.Migrator().HasTable(model) {
			marker = "ok"
		}
		fmt.Fprintf(out, "  %-8s %s\n", marker, name)
	}
	return nil
}
