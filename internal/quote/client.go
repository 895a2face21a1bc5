package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"paper-trading-go/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the quote API does not know the ticker.
var ErrNotFound = errors.New("unknown symbol")

// Quote is a live price for one ticker.
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// Client defines the interface for looking up live quotes.
type Client interface {
	Lookup(ctx context.Context, symbol string) (*Quote, error)
}

// RestClient is a client for an IEX-style quote API.
// It implements the Client interface.
type RestClient struct {
	client  *resty.Client
	token   string
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure RestClient implements the interface
var _ Client = (*RestClient)(nil)

// NewRestClient creates a new quote API client.
func NewRestClient(cfg *config.Quote, logger *zap.Logger) *RestClient {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &RestClient{
		client:  client,
		token:   cfg.Token,
		logger:  logger,
		limiter: limiter,
	}
}

// quoteResponse is the subset of the quote endpoint's payload we use.
type quoteResponse struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"companyName"`
	LatestPrice decimal.Decimal `json:"latestPrice"`
}

// Lookup fetches the live quote for a ticker. An unknown ticker yields
// ErrNotFound; any transport or server failure is returned as-is without
// retrying, so a trade in flight never stalls on a flaky quote feed.
func (c *RestClient) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	ticker := strings.ToUpper(strings.TrimSpace(symbol))
	if ticker == "" {
		return nil, ErrNotFound
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	c.logger.Debug("Looking up quote", zap.String("symbol", ticker))

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("token", c.token).
		SetResult(&quoteResponse{}).
		Get(fmt.Sprintf("/stock/%s/quote", url.PathEscape(ticker)))
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("quote request failed with status %s: %s", resp.Status(), resp.String())
	}

	result := resp.Result().(*quoteResponse)
	if result.LatestPrice.Sign() <= 0 {
		return nil, fmt.Errorf("quote for %s has non-positive price %s", ticker, result.LatestPrice)
	}

	return &Quote{
		Symbol: ticker,
		Name:   result.CompanyName,
		Price:  result.LatestPrice,
	}, nil
}
