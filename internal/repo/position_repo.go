package repo

import (
	"context"
	"time"

	"github.com/go-orz/orz"
	"github.com/tradekit/lumen/internal/models"
	"gorm.io/gorm"
)

func NewPositionRepo(db *gorm.DB) *PositionRepo {
	return &PositionRepo{
		Repository: orz.NewRepository[models.Position, string](db),
	}
}

type PositionRepo struct {
	orz.Repository[models.Position, string]
}

// FindByAddress returns the positions of an address, newest first.
func (r PositionRepo) FindByAddress(ctx context.Context, address string, limit int) ([]models.Position, error) {
	db := r.GetDB(ctx)
	var positions []models.Position
	q := db.Table(r.GetTableName()).
		Where("address = ?", address).
		Order("opened_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&positions).Error
	return positions, err
}

// FindActiveByAddress returns the open positions of an address.
func (r PositionRepo) FindActiveByAddress(ctx context.Context, address string) ([]models.Position, error) {
	db := r.GetDB(ctx)
	var positions []models.Position
	err := db.Table(r.GetTableName()).
		Where("address = ? AND active = ?", address, true).
		Order("opened_at DESC").
		Find(&positions).Error
	return positions, err
}

// FindActiveBySymbol returns the open position of an address for one symbol.
func (r PositionRepo) FindActiveBySymbol(ctx context.Context, address, symbol string) (models.Position, error) {
	db := r.GetDB(ctx)
	var position models.Position
	err := db.Table(r.GetTableName()).
		Where("address = ? AND symbol = ? AND active = ?", address, symbol, true).
		First(&position).Error
	return position, err
}

// FindAllActive returns every open position across all addresses. Used by
// the protective stop sweep.
func (r PositionRepo) FindAllActive(ctx context.Context) ([]models.Position, error) {
	db := r.GetDB(ctx)
	var positions []models.Position
	err := db.Table(r.GetTableName()).
		Where("active = ?", true).
		Order("opened_at DESC").
		Find(&positions).Error
	return positions, err
}

// CountActiveByAddress counts the open positions of an address.
func (r PositionRepo) CountActiveByAddress(ctx context.Context, address string) (int64, error) {
	db := r.GetDB(ctx)
	var count int64
	err := db.Table(r.GetTableName()).
		Where("address = ? AND active = ?", address, true).
		Count(&count).Error
	return count, err
}

// CountOpenedSince counts positions an address opened at or after the given
// time.
func (r PositionRepo) CountOpenedSince(ctx context.Context, address string, since time.Time) (int64, error) {
	db := r.GetDB(ctx)
	var count int64
	err := db.Table(r.GetTableName()).
		Where("address = ? AND opened_at >= ?", address, since).
		Count(&count).Error
	return count, err
}
