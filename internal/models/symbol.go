package models

import "gorm.io/gorm"

// Symbol represents a tradable stock ticker.
// Rows are created lazily on the first trade that references an unseen
// ticker and are immutable afterwards.
type Symbol struct {
	gorm.Model
	Ticker string `gorm:"uniqueIndex;not null" json:"ticker"`
}
