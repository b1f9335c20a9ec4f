package commands

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"daily-tracker/internal/bot"
	"daily-tracker/internal/service"
)

// NewBotCmd creates the bot command
func NewBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Long: `Poll Telegram for updates and send every user a summary every
REPORT_INTERVAL_HOURS (default 5) and, when REPORT_TIME is set, daily at that
time.`,
		Args: cobra.NoArgs,
		RunE: runBot,
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.cfg.RequireTelegram(); err != nil {
		return err
	}

	telegramBot, err := bot.New(a.cfg.TelegramToken, a.botServices(), a.log)
	if err != nil {
		return err
	}

	report := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error("send reports", zap.Error(err))
		}
	}

	scheduler := service.NewSchedulerService(a.aggregator.Calendar().Location(), a.log)
	if a.cfg.ReportInterval > 0 {
		if _, err := scheduler.ScheduleInterval(a.cfg.ReportInterval, report); err != nil {
			return err
		}
	}
	if a.cfg.ReportTime != "" {
		if _, err := scheduler.ScheduleDaily(a.cfg.ReportTime, report); err != nil {
			return err
		}
	}
	if scheduler.Len() > 0 {
		scheduler.Start()
		defer scheduler.Stop()
	}

	a.log.Info("daily planner bot started")
	if err := telegramBot.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
