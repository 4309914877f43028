package repo

import (
	"context"
	"time"

	"github.com/go-orz/orz"
	"github.com/tradekit/lumen/internal/models"
	"gorm.io/gorm"
)

func NewTradeRepo(db *gorm.DB) *TradeRepo {
	return &TradeRepo{
		Repository: orz.NewRepository[models.Trade, string](db),
	}
}

type TradeRepo struct {
	orz.Repository[models.Trade, string]
}

// FindByAddress returns the trades of an address, newest first.
func (r TradeRepo) FindByAddress(ctx context.Context, address string, limit int) ([]models.Trade, error) {
	db := r.GetDB(ctx)
	var trades []models.Trade
	q := db.Table(r.GetTableName()).
		Where("address = ?", address).
		Order("opened_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&trades).Error
	return trades, err
}

// FindActiveByAddress returns the open trades of an address.
func (r TradeRepo) FindActiveByAddress(ctx context.Context, address string) ([]models.Trade, error) {
	db := r.GetDB(ctx)
	var trades []models.Trade
	err := db.Table(r.GetTableName()).
		Where("address = ? AND status = ?", address, models.TradeStatusActive).
		Order("opened_at DESC").
		Find(&trades).Error
	return trades, err
}

// FindClosedByAddress returns the settled trades of an address, newest first.
func (r TradeRepo) FindClosedByAddress(ctx context.Context, address string) ([]models.Trade, error) {
	db := r.GetDB(ctx)
	var trades []models.Trade
	err := db.Table(r.GetTableName()).
		Where("address = ? AND status = ?", address, models.TradeStatusClosed).
		Order("closed_at DESC").
		Find(&trades).Error
	return trades, err
}

// CountOpenedSince counts trades an address opened at or after the given time.
// Used for the daily trade limit together with PositionRepo.CountOpenedSince.
func (r TradeRepo) CountOpenedSince(ctx context.Context, address string, since time.Time) (int64, error) {
	db := r.GetDB(ctx)
	var count int64
	err := db.Table(r.GetTableName()).
		Where("address = ? AND opened_at >= ?", address, since).
		Count(&count).Error
	return count, err
}
