package repo

import (
	"context"
	"errors"

	"github.com/go-orz/orz"
	"github.com/tradekit/lumen/internal/models"
	"gorm.io/gorm"
)

func NewAccountRepo(db *gorm.DB) *AccountRepo {
	return &AccountRepo{
		Repository: orz.NewRepository[models.Account, string](db),
	}
}

type AccountRepo struct {
	orz.Repository[models.Account, string]
}

// FindOrCreate returns the account for address, creating it with a zero
// balance on first use.
func (r AccountRepo) FindOrCreate(ctx context.Context, address string) (models.Account, error) {
	account, err := r.FindById(ctx, address)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Account{}, err
	}
	account = models.Account{Address: address}
	if err := r.Create(ctx, &account); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// UpdateBalance sets the balance of an account.
func (r AccountRepo) UpdateBalance(ctx context.Context, address string, balance float64) error {
	db := r.GetDB(ctx)
	return db.Table(r.GetTableName()).
		Where("address = ?", address).
		Update("balance", balance).Error
}
