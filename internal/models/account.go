package models

import (
	"time"
)

// Account is one ledger account. Addresses are opaque caller-supplied
// strings; every query against the ledger is scoped to a single address so
// accounts are isolated from each other.
type Account struct {
	Address   string    `gorm:"primaryKey;type:varchar(64)" json:"address"`
	Balance   float64   `gorm:"type:decimal(20,8);not null;default:0" json:"balance"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
