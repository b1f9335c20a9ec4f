package commands

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"daily-tracker/internal/bot"
	"daily-tracker/internal/config"
	"daily-tracker/internal/httpapi"
	"daily-tracker/internal/logger"
	"daily-tracker/internal/repository"
	"daily-tracker/internal/service"
)

// app holds everything a command needs once configuration is loaded.
type app struct {
	cfg config.Config
	log *zap.Logger
	db  *gorm.DB

	users      *repository.UserRepository
	tasks      *service.TaskService
	categories *service.CategoryService
	routines   *service.RoutineService
	aggregator *service.CompletionAggregator
	reminders  *service.ReminderService
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	if dbPath != "" {
		cfg.DatabaseURL = dbPath
	}
	if devLogs {
		cfg.LogDev = true
	}
	return cfg, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.Init(logger.Config{Level: cfg.LogLevel, Dev: cfg.LogDev})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := repository.NewDB(cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	logRepo := repository.NewRoutineLogRepository(db)
	aggregator := service.NewCompletionAggregator(logRepo, service.NewCalendar(loc))

	a := &app{
		cfg:        cfg,
		log:        log,
		db:         db,
		users:      repository.NewUserRepository(db),
		tasks:      service.NewTaskService(taskRepo, categoryRepo, log),
		categories: service.NewCategoryService(categoryRepo, taskRepo, log),
		routines:   service.NewRoutineService(repository.NewRoutineRepository(db), logRepo, aggregator, log),
		aggregator: aggregator,
	}
	a.reminders = service.NewReminderService(a.tasks, a.categories, a.routines, aggregator)
	return a, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}

func (a *app) botServices() bot.Services {
	return bot.Services{
		Users:      a.users,
		Tasks:      a.tasks,
		Categories: a.categories,
		Routines:   a.routines,
		Aggregator: a.aggregator,
		Reminders:  a.reminders,
	}
}

func (a *app) apiServices() httpapi.Services {
	return httpapi.Services{
		Tasks:      a.tasks,
		Categories: a.categories,
		Routines:   a.routines,
		Aggregator: a.aggregator,
	}
}
