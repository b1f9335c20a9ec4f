package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"daily-tracker/internal/model"
)

// RoutineLogRepository stores routine completions, one row per routine per day.
type RoutineLogRepository struct {
	db *gorm.DB
}

func NewRoutineLogRepository(db *gorm.DB) *RoutineLogRepository {
	return &RoutineLogRepository{db: db}
}

// CreateOnce inserts a completion unless one already exists for the same
// routine and date, and returns the stored row either way.
func (r *RoutineLogRepository) CreateOnce(ctx context.Context, userID, routineID uint, date time.Time) (*model.RoutineLog, error) {
	db := r.db.WithContext(ctx)
	entry := model.RoutineLog{UserID: userID, RoutineID: routineID, Date: date}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "routine_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("create routine log: %w", err)
	}

	var stored model.RoutineLog
	if err := db.Where("routine_id = ? AND date = ?", routineID, date).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("read routine log: %w", err)
	}
	return &stored, nil
}

// ListInRange returns the user's logs with from <= date < to.
func (r *RoutineLogRepository) ListInRange(ctx context.Context, userID uint, from, to time.Time) ([]model.RoutineLog, error) {
	var logs []model.RoutineLog
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Order("date ASC, id ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Delete removes one log by its own id.
func (r *RoutineLogRepository) Delete(ctx context.Context, userID, logID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, logID).Delete(&model.RoutineLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete routine log: %w", res.Error)
	}
	return res.RowsAffected, nil
}
