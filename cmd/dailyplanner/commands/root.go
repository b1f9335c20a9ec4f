package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	dbPath  string
	devLogs bool
)

// NewRootCmd creates the dailyplanner command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dailyplanner",
		Short: "Tasks, categories and daily routines",
		Long: `dailyplanner keeps a to-do list grouped by categories and a set of daily
routines with per-day completion.

It runs as a Telegram bot, as a JSON API, or both against the same SQLite
database. Configuration comes from the environment and an optional .env file:
TELEGRAM_TOKEN, DATABASE_URL, HTTP_ADDR, JWT_SECRET, TIME_ZONE,
REPORT_INTERVAL_HOURS, REPORT_TIME, LOG_LEVEL, LOG_DEV.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides DATABASE_URL)")
	cmd.PersistentFlags().BoolVar(&devLogs, "dev", false, "Human-readable debug logging")

	cmd.AddCommand(
		NewBotCmd(),
		NewServeCmd(),
		NewMigrateCmd(),
		NewTokenCmd(),
		NewReportCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
