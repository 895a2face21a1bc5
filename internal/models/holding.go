package models

import "time"

// Holding is a user's current share count in one symbol.
// A row exists only while Shares > 0; selling a position down to zero
// deletes the row. No gorm.Model here: soft deletion would keep the
// (user, symbol) unique index occupied after a full sell.
type Holding struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint  `gorm:"uniqueIndex:idx_user_symbol;not null" json:"user_id"`
	SymbolID  uint  `gorm:"uniqueIndex:idx_user_symbol;not null" json:"symbol_id"`
	Shares    int64 `gorm:"not null" json:"shares"`
}
