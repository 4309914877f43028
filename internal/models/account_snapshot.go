package models

import (
	"time"

	"gorm.io/gorm"
)

// AccountSnapshot is one point of the equity curve for a ledger account,
// recorded after each bot cycle.
type AccountSnapshot struct {
	ID            string         `gorm:"primaryKey;type:varchar(26)" json:"id"`
	Address       string         `gorm:"type:varchar(64);not null;index" json:"address"`
	Balance       float64        `gorm:"type:decimal(20,8);not null" json:"balance"`
	Equity        float64        `gorm:"type:decimal(20,8);not null" json:"equity"` // balance + margin held in open positions
	OpenPositions int            `json:"open_positions"`
	Iteration     int            `gorm:"index" json:"iteration"`
	RecordedAt    time.Time      `gorm:"not null;index" json:"recorded_at"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AccountSnapshot) TableName() string {
	return "account_snapshots"
}
