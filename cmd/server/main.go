package main // Entry point package

import (
	"database/sql"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iliyamo/movie-show-catalog/internal/config"   // Internal config loader
	"github.com/iliyamo/movie-show-catalog/internal/database" // DB connection and migrations
	"github.com/iliyamo/movie-show-catalog/internal/logging"
)

// app is what every subcommand gets after the root pre-run.
type app struct {
	cfg config.Config
	log zerolog.Logger
}

var (
	cur     app
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Movie and TV show catalog API",
	Long: `Runs the catalog HTTP API and its maintenance tasks.

Configuration comes from the environment (and an optional .env file):
APP_ENV, APP_PORT, DB_DRIVER, DB_* / SQLITE_PATH, REDIS_*, RATE_LIMIT_*,
CACHE_*, RABBITMQ_URL, LOG_LEVEL, LOG_FILE.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if logFile != "" {
			cfg.LogFile = logFile
		}
		l, err := logging.Init(logging.Options{
			Level:   cfg.LogLevel,
			File:    cfg.LogFile,
			Console: cfg.IsDevelopment(),
		})
		if err != nil {
			return err
		}
		cur = app{cfg: cfg, log: l}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error { return serveCmd.RunE(cmd, args) },
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this rotating file (overrides LOG_FILE)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, consumeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openDB connects to the configured database and applies pending migrations.
func openDB(cfg config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, cfg.DBDriver); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
