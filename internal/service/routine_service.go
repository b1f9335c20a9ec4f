package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"daily-tracker/internal/model"
	"daily-tracker/internal/repository"
)

// RoutineStatus is a routine together with its completion on one day.
type RoutineStatus struct {
	model.Routine
	Complete bool  `json:"complete"`
	LogID    *uint `json:"logId,omitempty"`
}

// RoutineService manages routines and their daily completion log.
type RoutineService struct {
	routineRepo *repository.RoutineRepository
	logRepo     *repository.RoutineLogRepository
	aggregator  *CompletionAggregator
	log         *zap.Logger
}

func NewRoutineService(routineRepo *repository.RoutineRepository, logRepo *repository.RoutineLogRepository, aggregator *CompletionAggregator, log *zap.Logger) *RoutineService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoutineService{
		routineRepo: routineRepo,
		logRepo:     logRepo,
		aggregator:  aggregator,
		log:         log.Named("routines"),
	}
}

func routinesKey(userID uint) string {
	return fmt.Sprintf("routines:%d:", userID)
}

// CreateRoutine adds a routine. Blank names write nothing and return
// ErrBlankInput; an empty color becomes DefaultRoutineColor.
func (s *RoutineService) CreateRoutine(ctx context.Context, userID uint, name, color string) (*model.Routine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBlankInput
	}
	if color = strings.TrimSpace(color); color == "" {
		color = model.DefaultRoutineColor
	}

	routine := model.Routine{UserID: userID, Name: name, Color: color}
	if err := s.routineRepo.Create(ctx, &routine); err != nil {
		return nil, storageFailure(s.log, ErrCreationFailed, "create routine", err, zap.Uint("user", userID))
	}
	invalidate(ctx, routinesKey(userID))
	return &routine, nil
}

// ListRoutines returns the user's routines in creation order.
func (s *RoutineService) ListRoutines(ctx context.Context, userID uint) ([]model.Routine, error) {
	routines, err := memoize(ctx, routinesKey(userID), func() ([]model.Routine, error) {
		return s.routineRepo.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	return slices.Clone(routines), nil
}

// RoutinesForDay pairs every routine with its completion log for day, if any.
func (s *RoutineService) RoutinesForDay(ctx context.Context, userID uint, day time.Time) ([]RoutineStatus, error) {
	routines, err := s.ListRoutines(ctx, userID)
	if err != nil {
		return nil, err
	}
	logs, err := s.aggregator.LogsForDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	byRoutine := make(map[uint]uint, len(logs))
	for _, entry := range logs {
		if _, seen := byRoutine[entry.RoutineID]; !seen {
			byRoutine[entry.RoutineID] = entry.ID
		}
	}

	out := make([]RoutineStatus, 0, len(routines))
	for _, routine := range routines {
		status := RoutineStatus{Routine: routine}
		if logID, ok := byRoutine[routine.ID]; ok {
			status.Complete = true
			status.LogID = &logID
		}
		out = append(out, status)
	}
	return out, nil
}

// CompleteRoutine records routineID as done on the calendar day of day. A
// repeated call for the same day returns the existing log.
func (s *RoutineService) CompleteRoutine(ctx context.Context, userID, routineID uint, day time.Time) (*model.RoutineLog, error) {
	if _, err := s.routineRepo.FindByID(ctx, userID, routineID); err != nil {
		return nil, lookupFailure("routine", err)
	}

	date := s.aggregator.Calendar().storageDay(day)
	entry, err := s.logRepo.CreateOnce(ctx, userID, routineID, date)
	if err != nil {
		return nil, storageFailure(s.log, ErrCompletionFailed, "complete routine", err,
			zap.Uint("user", userID), zap.Uint("routine", routineID), zap.Time("date", date))
	}
	invalidate(ctx, logsKey(userID))

	s.log.Debug("routine completed", zap.Uint("routine", routineID), zap.Uint("log", entry.ID), zap.Time("date", date))
	return entry, nil
}

// UncompleteRoutine removes a completion by the id returned from
// CompleteRoutine.
func (s *RoutineService) UncompleteRoutine(ctx context.Context, userID, logID uint) error {
	n, err := s.logRepo.Delete(ctx, userID, logID)
	if err != nil {
		return storageFailure(s.log, ErrDeletionFailed, "uncomplete routine", err, zap.Uint("user", userID), zap.Uint("log", logID))
	}
	if n == 0 {
		return missing(ErrDeletionFailed)
	}
	invalidate(ctx, logsKey(userID))
	return nil
}

// DeleteRoutine removes a routine and its completion history.
func (s *RoutineService) DeleteRoutine(ctx context.Context, userID, routineID uint) error {
	n, err := s.routineRepo.Delete(ctx, userID, routineID)
	if err != nil {
		return storageFailure(s.log, ErrDeletionFailed, "delete routine", err, zap.Uint("user", userID), zap.Uint("routine", routineID))
	}
	if n == 0 {
		return missing(ErrDeletionFailed)
	}
	invalidate(ctx, routinesKey(userID))
	invalidate(ctx, logsKey(userID))
	return nil
}
