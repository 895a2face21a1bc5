package ledger

import (
	"context"
	"errors"
	"fmt"

	"paper-trading-go/internal/models"
	"paper-trading-go/internal/quote"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service executes trades against the account ledger. Every trade mutates
// three records as one unit: the user's cash, the holding row for the
// traded symbol, and the append-only transaction log. A failure anywhere
// rolls all three back.
type Service struct {
	db     *gorm.DB
	quotes quote.Client
	logger *zap.Logger
}

// NewService creates a new ledger service.
func NewService(db *gorm.DB, quotes quote.Client, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		quotes: quotes,
		logger: logger,
	}
}

// lookup resolves a ticker through the quote client, translating its
// failures into the ledger's typed errors.
func (s *Service) lookup(ctx context.Context, symbol string) (*quote.Quote, error) {
	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		if errors.Is(err, quote.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
		}
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	return q, nil
}

// ExecuteBuy purchases shares of a symbol at the current live price,
// debiting the user's cash. The price is captured once, before the
// database transaction opens, so the debit and the audit record always
// agree. Returns the appended transaction record.
func (s *Service) ExecuteBuy(ctx context.Context, userID uint, symbol string, shares int64) (*models.Transaction, error) {
	if shares <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShares, shares)
	}

	q, err := s.lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	cost := q.Price.Mul(decimal.NewFromInt(shares))

	var txn models.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return fmt.Errorf("could not load user %d: %w", userID, err)
		}

		if user.Cash.LessThan(cost) {
			return fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds, cost, user.Cash)
		}

		// Lazy symbol registration. Insert-if-absent inside the same
		// transaction, so two first-time buyers of a new ticker cannot
		// both create it.
		sym := models.Symbol{Ticker: q.Symbol}
		if err := tx.FirstOrCreate(&sym, models.Symbol{Ticker: q.Symbol}).Error; err != nil {
			return fmt.Errorf("failed to register symbol %s: %w", q.Symbol, err)
		}

		if err := tx.Model(&user).Update("cash", user.Cash.Sub(cost)).Error; err != nil {
			return fmt.Errorf("failed to debit cash: %w", err)
		}

		var holding models.Holding
		err := tx.Where("user_id = ? AND symbol_id = ?", user.ID, sym.ID).First(&holding).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			holding = models.Holding{UserID: user.ID, SymbolID: sym.ID, Shares: shares}
			if err := tx.Create(&holding).Error; err != nil {
				return fmt.Errorf("failed to create holding: %w", err)
			}
		case err != nil:
			return fmt.Errorf("could not load holding: %w", err)
		default:
			if err := tx.Model(&holding).Update("shares", holding.Shares+shares).Error; err != nil {
				return fmt.Errorf("failed to increment holding: %w", err)
			}
		}

		txn = models.Transaction{
			UserID:   user.ID,
			SymbolID: sym.ID,
			Kind:     models.KindBuy,
			Shares:   shares,
			Price:    q.Price,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Executed buy",
		zap.Uint("user_id", userID),
		zap.String("symbol", q.Symbol),
		zap.Int64("shares", shares),
		zap.String("price", q.Price.String()),
	)
	return &txn, nil
}

// ExecuteSell sells shares the user currently holds, crediting cash at the
// live price (not the original purchase price). Selling a position down to
// zero removes its holding row. Returns the appended transaction record.
func (s *Service) ExecuteSell(ctx context.Context, userID uint, symbol string, shares int64) (*models.Transaction, error) {
	if shares <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShares, shares)
	}

	q, err := s.lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	proceeds := q.Price.Mul(decimal.NewFromInt(shares))

	var txn models.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sym models.Symbol
		if err := tx.Where("ticker = ?", q.Symbol).First(&sym).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no position in %s", ErrInsufficientShares, q.Symbol)
			}
			return fmt.Errorf("could not load symbol %s: %w", q.Symbol, err)
		}

		var holding models.Holding
		if err := tx.Where("user_id = ? AND symbol_id = ?", userID, sym.ID).First(&holding).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no position in %s", ErrInsufficientShares, q.Symbol)
			}
			return fmt.Errorf("could not load holding: %w", err)
		}

		if holding.Shares < shares {
			return fmt.Errorf("%w: have %d, selling %d", ErrInsufficientShares, holding.Shares, shares)
		}

		if holding.Shares == shares {
			if err := tx.Delete(&holding).Error; err != nil {
				return fmt.Errorf("failed to delete holding: %w", err)
			}
		} else {
			if err := tx.Model(&holding).Update("shares", holding.Shares-shares).Error; err != nil {
				return fmt.Errorf("failed to decrement holding: %w", err)
			}
		}

		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return fmt.Errorf("could not load user %d: %w", userID, err)
		}
		if err := tx.Model(&user).Update("cash", user.Cash.Add(proceeds)).Error; err != nil {
			return fmt.Errorf("failed to credit cash: %w", err)
		}

		txn = models.Transaction{
			UserID:   userID,
			SymbolID: sym.ID,
			Kind:     models.KindSell,
			Shares:   shares,
			Price:    q.Price,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Executed sell",
		zap.Uint("user_id", userID),
		zap.String("symbol", q.Symbol),
		zap.Int64("shares", shares),
		zap.String("price", q.Price.String()),
	)
	return &txn, nil
}
