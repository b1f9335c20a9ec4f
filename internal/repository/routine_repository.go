package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"daily-tracker/internal/model"
)

// RoutineRepository handles CRUD for routines.
type RoutineRepository struct {
	db *gorm.DB
}

func NewRoutineRepository(db *gorm.DB) *RoutineRepository {
	return &RoutineRepository{db: db}
}

func (r *RoutineRepository) Create(ctx context.Context, routine *model.Routine) error {
	if err := r.db.WithContext(ctx).Create(routine).Error; err != nil {
		return fmt.Errorf("create routine: %w", err)
	}
	return nil
}

// ListByUser returns routines in creation order.
func (r *RoutineRepository) ListByUser(ctx context.Context, userID uint) ([]model.Routine, error) {
	var routines []model.Routine
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&routines).Error; err != nil {
		return nil, err
	}
	return routines, nil
}

func (r *RoutineRepository) FindByID(ctx context.Context, userID, id uint) (*model.Routine, error) {
	var routine model.Routine
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&routine).Error; err != nil {
		return nil, err
	}
	return &routine, nil
}

// Delete removes a routine together with its completion logs.
func (r *RoutineRepository) Delete(ctx context.Context, userID, id uint) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND routine_id = ?", userID, id).Delete(&model.RoutineLog{}).Error; err != nil {
			return fmt.Errorf("delete routine logs: %w", err)
		}
		res := tx.Where("user_id = ? AND id = ?", userID, id).Delete(&model.Routine{})
		if res.Error != nil {
			return fmt.Errorf("delete routine: %w", res.Error)
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}
