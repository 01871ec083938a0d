package repository

import (
	"context"

	"gorm.io/gorm"

	"pricing-service/internal/models"
)

// RunRepository persists pricing-run history to Postgres.
type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// RecordRun inserts one terminal run record.
func (r *RunRepository) RecordRun(ctx context.Context, run *models.PricingRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// ListRuns returns run history, newest first.
func (r *RunRepository) ListRuns(ctx context.Context, limit, offset int) ([]models.PricingRun, int64, error) {
	var runs []models.PricingRun
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.PricingRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}

	return runs, total, nil
}

// GetRun looks up one run by its run identifier.
func (r *RunRepository) GetRun(ctx context.Context, runID string) (*models.PricingRun, error) {
	var run models.PricingRun
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}
