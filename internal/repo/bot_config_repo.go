package repo

import (
	"github.com/go-orz/orz"
	"github.com/tradekit/lumen/internal/models"
	"gorm.io/gorm"
)

func NewBotConfigRepo(db *gorm.DB) *BotConfigRepo {
	return &BotConfigRepo{
		Repository: orz.NewRepository[models.BotConfig, string](db),
	}
}

type BotConfigRepo struct {
	orz.Repository[models.BotConfig, string]
}
