package ledger

import (
	"context"
	"fmt"
	"time"

	"paper-trading-go/internal/models"

	"github.com/shopspring/decimal"
)

// Position is one row of a user's portfolio: a held symbol priced live.
type Position struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Shares int64           `json:"shares"`
	Price  decimal.Decimal `json:"price"`
	Value  decimal.Decimal `json:"value"`
}

// Portfolio is a user's cash plus all positions valued at live prices.
type Portfolio struct {
	Cash      decimal.Decimal `json:"cash"`
	Positions []Position      `json:"positions"`
	Total     decimal.Decimal `json:"total"`
}

// HistoryEntry is one transaction annotated with its ticker and line total,
// computed from the price recorded at execution time.
type HistoryEntry struct {
	Symbol string          `json:"symbol"`
	Kind   string          `json:"kind"`
	Shares int64           `json:"shares"`
	Price  decimal.Decimal `json:"price"`
	Total  decimal.Decimal `json:"total"`
	Time   time.Time       `json:"time"`
}

// GetPortfolio returns the user's holdings with live prices, per-position
// market values, and the grand total of cash plus market values. A held
// symbol the quote feed cannot price fails the whole query: owning an
// unpriceable stock is a service fault, not something to skip over.
func (s *Service) GetPortfolio(ctx context.Context, userID uint) (*Portfolio, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("could not load user %d: %w", userID, err)
	}

	type holdingRow struct {
		Ticker string
		Shares int64
	}
	var rows []holdingRow
	err := s.db.WithContext(ctx).
		Model(&models.Holding{}).
		Select("symbols.ticker AS ticker, holdings.shares AS shares").
		Joins("JOIN symbols ON symbols.id = holdings.symbol_id").
		Where("holdings.user_id = ?", userID).
		Order("symbols.ticker").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not load holdings: %w", err)
	}

	total := user.Cash
	positions := make([]Position, 0, len(rows))
	for _, row := range rows {
		q, err := s.lookup(ctx, row.Ticker)
		if err != nil {
			return nil, err
		}
		value := q.Price.Mul(decimal.NewFromInt(row.Shares))
		positions = append(positions, Position{
			Symbol: row.Ticker,
			Name:   q.Name,
			Shares: row.Shares,
			Price:  q.Price,
			Value:  value,
		})
		total = total.Add(value)
	}

	return &Portfolio{
		Cash:      user.Cash,
		Positions: positions,
		Total:     total,
	}, nil
}

// GetHistory returns all of the user's transactions, newest first. Line
// totals use the recorded execution price; no live lookups are involved,
// so history stays stable as prices move.
func (s *Service) GetHistory(ctx context.Context, userID uint) ([]HistoryEntry, error) {
	type txnRow struct {
		Ticker    string
		Kind      string
		Shares    int64
		Price     decimal.Decimal
		CreatedAt time.Time
	}
	var rows []txnRow
	err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("symbols.ticker AS ticker, transactions.kind, transactions.shares, transactions.price, transactions.created_at").
		Joins("JOIN symbols ON symbols.id = transactions.symbol_id").
		Where("transactions.user_id = ?", userID).
		Order("transactions.created_at DESC, transactions.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not load transactions: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, HistoryEntry{
			Symbol: row.Ticker,
			Kind:   row.Kind,
			Shares: row.Shares,
			Price:  row.Price,
			Total:  row.Price.Mul(decimal.NewFromInt(row.Shares)),
			Time:   row.CreatedAt,
		})
	}
	return entries, nil
}
