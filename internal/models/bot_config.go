package models

import (
	"time"
)

// BotConfig holds the per-address bot settings mirrored from the ledger's
// configureBotSettings operation.
type BotConfig struct {
	Address         string    `gorm:"primaryKey;type:varchar(64)" json:"address"`
	MaxPositionSize float64   `gorm:"type:decimal(20,8);not null" json:"max_position_size"` // max notional per trade
	DailyTradeLimit int       `gorm:"not null" json:"daily_trade_limit"`                    // opens per UTC day
	MinConfidence   float64   `gorm:"type:decimal(10,4);not null" json:"min_confidence"`    // 0-100
	Active          bool      `gorm:"not null;default:false" json:"active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BotConfig) TableName() string {
	return "bot_configs"
}
