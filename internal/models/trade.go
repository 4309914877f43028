package models

import (
	"time"

	"gorm.io/gorm"
)

// TradeStatus is the lifecycle state of a trade.
type TradeStatus string

const (
	TradeStatusActive TradeStatus = "active"
	TradeStatusClosed TradeStatus = "closed"
)

// Trade is one executed trade on the ledger. A trade opens active at the
// entry price and is closed once with an exit price, at which point pnl is
// settled into the account balance.
type Trade struct {
	ID         string         `gorm:"primaryKey;type:varchar(26)" json:"id"`
	Address    string         `gorm:"type:varchar(64);not null;index" json:"address"`
	Symbol     string         `gorm:"type:varchar(20);not null;index" json:"symbol"`
	Side       string         `gorm:"type:varchar(10);not null" json:"side"` // long/short
	Amount     float64        `gorm:"type:decimal(20,8);not null" json:"amount"`
	EntryPrice float64        `gorm:"type:decimal(20,8);not null" json:"entry_price"`
	ExitPrice  float64        `gorm:"type:decimal(20,8)" json:"exit_price"`
	Pnl        float64        `gorm:"type:decimal(20,8)" json:"pnl"`
	Status     TradeStatus    `gorm:"type:varchar(10);not null;index" json:"status"`
	OpenedAt   time.Time      `gorm:"not null;index" json:"opened_at"`
	ClosedAt   *time.Time     `json:"closed_at,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Trade) TableName() string {
	return "trades"
}

// IsActive reports whether the trade can still be closed.
func (t *Trade) IsActive() bool {
	return t.Status == TradeStatusActive
}

// CalculatePnl returns the profit of closing the trade at exitPrice.
func (t *Trade) CalculatePnl(exitPrice float64) float64 {
	if t.Side == "short" {
		return (t.EntryPrice - exitPrice) * t.Amount
	}
	return (exitPrice - t.EntryPrice) * t.Amount
}
