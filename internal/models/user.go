package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User represents a registered account.
// Cash is mutated only by the ledger service and must never go negative.
type User struct {
	gorm.Model
	Username     string          `gorm:"uniqueIndex;not null"`
	PasswordHash string          `gorm:"not null" json:"-"`
	Cash         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cash"`
}
