package repo

import (
	"context"

	"github.com/go-orz/orz"
	"github.com/tradekit/lumen/internal/models"
	"gorm.io/gorm"
)

func NewSignalRepo(db *gorm.DB) *SignalRepo {
	return &SignalRepo{
		Repository: orz.NewRepository[models.Signal, string](db),
	}
}

type SignalRepo struct {
	orz.Repository[models.Signal, string]
}

// FindRecent returns the most recent signals across all symbols.
func (r SignalRepo) FindRecent(ctx context.Context, limit int) ([]models.Signal, error) {
	db := r.GetDB(ctx)
	var signals []models.Signal
	err := db.Table(r.GetTableName()).
		Order("created_at DESC").
		Limit(limit).
		Find(&signals).Error
	return signals, err
}

// FindRecentBySymbol returns the most recent signals for one symbol.
func (r SignalRepo) FindRecentBySymbol(ctx context.Context, symbol string, limit int) ([]models.Signal, error) {
	db := r.GetDB(ctx)
	var signals []models.Signal
	err := db.Table(r.GetTableName()).
		Where("symbol = ?", symbol).
		Order("created_at DESC").
		Limit(limit).
		Find(&signals).Error
	return signals, err
}
