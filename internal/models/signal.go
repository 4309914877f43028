package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SignalAction is the recommendation produced by the strategy.
type SignalAction string

const (
	SignalActionBuy  SignalAction = "BUY"
	SignalActionSell SignalAction = "SELL"
	SignalActionHold SignalAction = "HOLD"
)

// Signal is one scored strategy evaluation for a symbol.
type Signal struct {
	ID         string                      `gorm:"primaryKey;type:varchar(26)" json:"id"`
	Symbol     string                      `gorm:"type:varchar(20);not null;index" json:"symbol"`
	Action     SignalAction                `gorm:"type:varchar(10);not null" json:"action"`
	Score      float64                     `gorm:"type:decimal(10,4)" json:"score"`      // weighted sum, roughly [-2, 2]
	Confidence float64                     `gorm:"type:decimal(10,4)" json:"confidence"` // 0-100
	Price      float64                     `gorm:"type:decimal(20,8)" json:"price"`
	Reasons    datatypes.JSONSlice[string] `gorm:"type:json" json:"reasons"`
	Components datatypes.JSON              `gorm:"type:json" json:"components"` // per-indicator contributions
	Iteration  int                         `gorm:"index" json:"iteration"`      // bot cycle that produced it, 0 for ad-hoc
	CreatedAt  time.Time                   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt              `gorm:"index" json:"deleted_at,omitempty"`
}

func (Signal) TableName() string {
	return "signals"
}
