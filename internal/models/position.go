package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Position is an open ledger position with protective stop prices. The
// notional (amount * entry price) is debited from the account as margin on
// open and settled back with pnl on close.
type Position struct {
	ID         string         `gorm:"primaryKey;type:varchar(26)" json:"id"`
	Address    string         `gorm:"type:varchar(64);not null;index" json:"address"`
	Symbol     string         `gorm:"type:varchar(20);not null;index" json:"symbol"`
	Side       string         `gorm:"type:varchar(10);not null" json:"side"` // long/short
	Amount     float64        `gorm:"type:decimal(20,8);not null" json:"amount"`
	EntryPrice float64        `gorm:"type:decimal(20,8);not null" json:"entry_price"`
	ExitPrice  float64        `gorm:"type:decimal(20,8)" json:"exit_price"`
	StopLoss   float64        `gorm:"type:decimal(20,8)" json:"stop_loss"`
	TakeProfit float64        `gorm:"type:decimal(20,8)" json:"take_profit"`
	Pnl        float64        `gorm:"type:decimal(20,8)" json:"pnl"`
	Active     bool           `gorm:"not null;index;default:true" json:"active"`
	Reason     string         `gorm:"type:text" json:"reason"` // why the bot opened it
	OpenedAt   time.Time      `gorm:"not null;index" json:"opened_at"`
	ClosedAt   *time.Time     `json:"closed_at,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (*Position) TableName() string {
	return "positions"
}

// Margin is the notional reserved for the position.
func (p *Position) Margin() float64 {
	return p.Amount * p.EntryPrice
}

// CalculatePnl returns the profit of closing the position at exitPrice.
func (p *Position) CalculatePnl(exitPrice float64) float64 {
	if p.Side == "short" {
		return (p.EntryPrice - exitPrice) * p.Amount
	}
	return (exitPrice - p.EntryPrice) * p.Amount
}

// StopHit reports whether the stop-loss or take-profit is crossed at price,
// and which one.
func (p *Position) StopHit(price float64) (bool, string) {
	if p.Side == "short" {
		if p.StopLoss > 0 && price >= p.StopLoss {
			return true, "stop_loss"
		}
		if p.TakeProfit > 0 && price <= p.TakeProfit {
			return true, "take_profit"
		}
		return false, ""
	}

	if p.StopLoss > 0 && price <= p.StopLoss {
		return true, "stop_loss"
	}
	if p.TakeProfit > 0 && price >= p.TakeProfit {
		return true, "take_profit"
	}
	return false, ""
}

func (p *Position) CalculateHoldingStr() string {
	holding := time.Since(p.OpenedAt)
	holdingStr, _ := strings.CutSuffix(holding.Round(time.Minute).String(), "0s")
	return holdingStr
}
