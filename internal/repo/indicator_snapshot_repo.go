package repo

import (
	"context"

	"github.com/go-orz/orz"
	"github.com/tradekit/lumen/internal/models"
	"gorm.io/gorm"
)

func NewIndicatorSnapshotRepo(db *gorm.DB) *IndicatorSnapshotRepo {
	return &IndicatorSnapshotRepo{
		Repository: orz.NewRepository[models.IndicatorSnapshot, string](db),
	}
}

type IndicatorSnapshotRepo struct {
	orz.Repository[models.IndicatorSnapshot, string]
}

// FindLatest returns the newest snapshot for a symbol and timeframe.
func (r IndicatorSnapshotRepo) FindLatest(ctx context.Context, symbol, timeframe string) (models.IndicatorSnapshot, error) {
	db := r.GetDB(ctx)
	var snapshot models.IndicatorSnapshot
	err := db.Table(r.GetTableName()).
		Where("symbol = ? AND timeframe = ?", symbol, timeframe).
		Order("calculated_at DESC").
		First(&snapshot).Error
	return snapshot, err
}

// FindHistory returns snapshots for a symbol and timeframe, newest first.
func (r IndicatorSnapshotRepo) FindHistory(ctx context.Context, symbol, timeframe string, limit int) ([]models.IndicatorSnapshot, error) {
	db := r.GetDB(ctx)
	var snapshots []models.IndicatorSnapshot
	err := db.Table(r.GetTableName()).
		Where("symbol = ? AND timeframe = ?", symbol, timeframe).
		Order("calculated_at DESC").
		Limit(limit).
		Find(&snapshots).Error
	return snapshots, err
}
