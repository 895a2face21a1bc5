package ledger

import "errors"

// Typed errors surfaced by the ledger service. Callers match them with
// errors.Is; the HTTP layer maps them to status codes.
var (
	ErrInvalidShares      = errors.New("shares must be a positive whole number")
	ErrUnknownSymbol      = errors.New("unknown symbol")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrOracleUnavailable  = errors.New("quote service unavailable")
)
