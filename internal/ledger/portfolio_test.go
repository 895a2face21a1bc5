package ledger

import (
	"context"
	"errors"
	"testing"

	"paper-trading-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGetPortfolio_Empty(t *testing.T) {
	svc, _, _, user := setupTest(t, 10000)

	portfolio, err := svc.GetPortfolio(context.Background(), user.ID)

	assert.NoError(t, err)
	assert.Empty(t, portfolio.Positions)
	assert.True(t, portfolio.Cash.Equal(decimal.NewFromInt(10000)))
	assert.True(t, portfolio.Total.Equal(decimal.NewFromInt(10000)))
}

func TestGetPortfolio_ValuesHoldingsAtLivePrices(t *testing.T) {
	svc, mockClient, _, user := setupTest(t, 10000)

	// Buy at one price, then value the portfolio at a different one.
	mockClient.On("Lookup", "AAPL").Return(quoteFor("AAPL", 50), nil).Once()
	_, err := svc.ExecuteBuy(context.Background(), user.ID, "AAPL", 10)
	assert.NoError(t, err)
	mockClient.On("Lookup", "GOOG").Return(quoteFor("GOOG", 100), nil).Once()
	_, err = svc.ExecuteBuy(context.Background(), user.ID, "GOOG", 2)
	assert.NoError(t, err)

	// cash is now 10000 - 500 - 200 = 9300
	mockClient.On("Lookup", "AAPL").Return(quoteFor("AAPL", 60), nil).Once()
	mockClient.On("Lookup", "GOOG").Return(quoteFor("GOOG", 90), nil).Once()

	portfolio, err := svc.GetPortfolio(context.Background(), user.ID)

	assert.NoError(t, err)
	assert.Len(t, portfolio.Positions, 2)
	assert.True(t, portfolio.Cash.Equal(decimal.NewFromInt(9300)), "cash = %s", portfolio.Cash)

	// Positions come back ordered by ticker.
	aapl, goog := portfolio.Positions[0], portfolio.Positions[1]
	assert.Equal(t, "AAPL", aapl.Symbol)
	assert.Equal(t, int64(10), aapl.Shares)
	assert.True(t, aapl.Value.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, "GOOG", goog.Symbol)
	assert.True(t, goog.Value.Equal(decimal.NewFromInt(180)))

	// total = 9300 + 600 + 180
	assert.True(t, portfolio.Total.Equal(decimal.NewFromInt(10080)), "total = %s", portfolio.Total)
	mockClient.AssertExpectations(t)
}

func TestGetPortfolio_HeldSymbolUnpriceable(t *testing.T) {
	svc, mockClient, _, user := setupTest(t, 10000)

	mockClient.On("Lookup", "AAPL").Return(quoteFor("AAPL", 50), nil).Once()
	_, err := svc.ExecuteBuy(context.Background(), user.ID, "AAPL", 10)
	assert.NoError(t, err)

	// A stock the user owns must always be priceable; a feed outage on a
	// held symbol fails the whole query rather than dropping the row.
	mockClient.On("Lookup", "AAPL").Return(nil, errors.New("API down")).Once()

	portfolio, err := svc.GetPortfolio(context.Background(), user.ID)

	assert.ErrorIs(t, err, ErrOracleUnavailable)
	assert.Nil(t, portfolio)
}

func TestGetHistory(t *testing.T) {
	svc, mockClient, _, user := setupTest(t, 10000)

	mockClient.On("Lookup", "AAPL").Return(quoteFor("AAPL", 50), nil).Once()
	_, err := svc.ExecuteBuy(context.Background(), user.ID, "AAPL", 10)
	assert.NoError(t, err)
	mockClient.On("Lookup", "AAPL").Return(quoteFor("AAPL", 60), nil).Once()
	_, err = svc.ExecuteSell(context.Background(), user.ID, "AAPL", 4)
	assert.NoError(t, err)

	history, err := svc.GetHistory(context.Background(), user.ID)

	assert.NoError(t, err)
	assert.Len(t, history, 2)

	// Newest first: the sell precedes the buy.
	sell, buy := history[0], history[1]
	assert.Equal(t, models.KindSell, sell.Kind)
	assert.Equal(t, int64(4), sell.Shares)
	assert.True(t, sell.Price.Equal(decimal.NewFromInt(60)))
	assert.True(t, sell.Total.Equal(decimal.NewFromInt(240)))

	assert.Equal(t, models.KindBuy, buy.Kind)
	assert.Equal(t, int64(10), buy.Shares)
	assert.True(t, buy.Price.Equal(decimal.NewFromInt(50)))
	assert.True(t, buy.Total.Equal(decimal.NewFromInt(500)))

	// History never consults the quote feed: the two Lookup calls above
	// were the trades' own, and none happen here.
	mockClient.AssertNumberOfCalls(t, "Lookup", 2)
}

func TestGetHistory_Empty(t *testing.T) {
	svc, _, _, user := setupTest(t, 10000)

	history, err := svc.GetHistory(context.Background(), user.ID)

	assert.NoError(t, err)
	assert.Empty(t, history)
}

func TestGetHistory_OnlyOwnTransactions(t *testing.T) {
	svc, mockClient, db, alice := setupTest(t, 10000)
	bob := &models.User{Username: "bob", PasswordHash: "x", Cash: decimal.NewFromInt(10000)}
	assert.NoError(t, db.Create(bob).Error)

	mockClient.On("Lookup", "AAPL").Return(quoteFor("AAPL", 50), nil)
	_, err := svc.ExecuteBuy(context.Background(), alice.ID, "AAPL", 1)
	assert.NoError(t, err)
	_, err = svc.ExecuteBuy(context.Background(), bob.ID, "AAPL", 2)
	assert.NoError(t, err)

	history, err := svc.GetHistory(context.Background(), alice.ID)

	assert.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, int64(1), history[0].Shares)
}
