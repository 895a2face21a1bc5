package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction kinds.
const (
	KindBuy  = "buy"
	KindSell = "sell"
)

// Transaction is one append-only audit record of a ledger mutation.
// Price is the per-share price in effect when the trade executed, never
// updated afterwards. CreatedAt doubles as the execution timestamp.
type Transaction struct {
	gorm.Model
	UserID   uint            `gorm:"index;not null" json:"user_id"`
	SymbolID uint            `gorm:"index;not null" json:"symbol_id"`
	Kind     string          `gorm:"not null" json:"kind"`
	Shares   int64           `gorm:"not null" json:"shares"`
	Price    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
}
