package repo

import (
	"context"

	"github.com/go-orz/orz"
	"github.com/tradekit/lumen/internal/models"
	"gorm.io/gorm"
)

func NewAccountSnapshotRepo(db *gorm.DB) *AccountSnapshotRepo {
	return &AccountSnapshotRepo{
		Repository: orz.NewRepository[models.AccountSnapshot, string](db),
	}
}

type AccountSnapshotRepo struct {
	orz.Repository[models.AccountSnapshot, string]
}

// FindByAddress returns the equity curve of an address in chronological
// order, capped at limit points.
func (r AccountSnapshotRepo) FindByAddress(ctx context.Context, address string, limit int) ([]models.AccountSnapshot, error) {
	db := r.GetDB(ctx)
	var snapshots []models.AccountSnapshot
	err := db.Table(r.GetTableName()).
		Where("address = ?", address).
		Order("recorded_at ASC").
		Limit(limit).
		Find(&snapshots).Error
	return snapshots, err
}

// FindLatest returns the newest snapshot of an address.
func (r AccountSnapshotRepo) FindLatest(ctx context.Context, address string) (models.AccountSnapshot, error) {
	db := r.GetDB(ctx)
	var snapshot models.AccountSnapshot
	err := db.Table(r.GetTableName()).
		Where("address = ?", address).
		Order("recorded_at DESC").
		First(&snapshot).Error
	return snapshot, err
}
