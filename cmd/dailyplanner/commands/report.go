package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	reportTelegramID int64
	reportDay        string
)

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a user's daily summary",
		Long: `Print the summary the bot would send to a Telegram user.

Examples:
  dailyplanner report --telegram-id 123456
  dailyplanner report --telegram-id 123456 --day 2024-01-01`,
		Args: cobra.NoArgs,
		RunE: runReport,
	}
	cmd.Flags().Int64Var(&reportTelegramID, "telegram-id", 0, "Telegram user id")
	cmd.Flags().StringVar(&reportDay, "day", "", "Day to report as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("telegram-id")
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	user, err := a.users.FindByTelegramID(ctx, reportTelegramID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("no user with telegram id %d", reportTelegramID)
	}
	if err != nil {
		return err
	}

	now := time.Now()
	if reportDay != "" {
		day, err := a.aggregator.Calendar().ParseDay(reportDay)
		if err != nil {
			return fmt.Errorf("--day: %w", err)
		}
		now = day
	}

	text, err := a.reminders.DailySummary(ctx, *user, now)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
