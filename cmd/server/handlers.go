package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"paper-trading-go/internal/account"
	"paper-trading-go/internal/ledger"
	"paper-trading-go/internal/quote"

	"go.uber.org/zap"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log      *zap.Logger
	accounts *account.Service
	ledger   *ledger.Service
	quotes   quote.Client
	sessions *SessionStore
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, accounts *account.Service, ledgerSvc *ledger.Service, quotes quote.Client, sessions *SessionStore) *APIHandler {
	return &APIHandler{
		log:      log,
		accounts: accounts,
		ledger:   ledgerSvc,
		quotes:   quotes,
		sessions: sessions,
	}
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps service errors to HTTP statuses. The typed ledger and
// account errors are all caller mistakes except oracle unavailability,
// which is an upstream fault.
func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrInvalidShares),
		errors.Is(err, ledger.ErrUnknownSymbol),
		errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrInsufficientShares),
		errors.Is(err, account.ErrMissingField),
		errors.Is(err, account.ErrUsernameTaken):
		status = http.StatusBadRequest
	case errors.Is(err, account.ErrInvalidCredentials):
		status = http.StatusForbidden
	case errors.Is(err, ledger.ErrOracleUnavailable):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", zap.Error(err))
		h.writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// currentUser resolves the session cookie to a user ID, writing a 401 if
// the request carries no live session.
func (h *APIHandler) currentUser(w http.ResponseWriter, r *http.Request) (uint, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
		return 0, false
	}
	userID, ok := h.sessions.Get(cookie.Value)
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
		return 0, false
	}
	return userID, true
}

func (h *APIHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// RegisterHandler creates an account and logs it straight in.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	password := r.FormValue("password")
	if password == "" || password != r.FormValue("confirmation") {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "passwords must match"})
		return
	}

	user, err := h.accounts.Register(r.Context(), r.FormValue("username"), password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.setSessionCookie(w, h.sessions.Create(user.ID))
	h.writeJSON(w, http.StatusCreated, map[string]any{"username": user.Username, "cash": user.Cash})
}

// LoginHandler verifies credentials and starts a session.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.setSessionCookie(w, h.sessions.Create(user.ID))
	h.writeJSON(w, http.StatusOK, map[string]any{"username": user.Username, "cash": user.Cash})
}

// LogoutHandler ends the current session.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		h.sessions.Delete(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", MaxAge: -1})
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// CheckHandler reports whether a username is still available.
func (h *APIHandler) CheckHandler(w http.ResponseWriter, r *http.Request) {
	available, err := h.accounts.UsernameAvailable(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, available)
}

// QuoteHandler returns the live quote for a ticker.
func (h *APIHandler) QuoteHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.currentUser(w, r); !ok {
		return
	}

	q, err := h.quotes.Lookup(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		if errors.Is(err, quote.ErrNotFound) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown symbol"})
			return
		}
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, q)
}

// BuyHandler executes a buy for the logged-in user.
func (h *APIHandler) BuyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	shares, err := ledger.ParseShares(r.FormValue("shares"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	txn, err := h.ledger.ExecuteBuy(r.Context(), userID, r.FormValue("symbol"), shares)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, txn)
}

// SellHandler executes a sell for the logged-in user.
func (h *APIHandler) SellHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	shares, err := ledger.ParseShares(r.FormValue("shares"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	txn, err := h.ledger.ExecuteSell(r.Context(), userID, r.FormValue("symbol"), shares)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, txn)
}

// PortfolioHandler returns the logged-in user's holdings at live prices.
func (h *APIHandler) PortfolioHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	portfolio, err := h.ledger.GetPortfolio(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, portfolio)
}

// HistoryHandler returns the logged-in user's transaction log.
func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	history, err := h.ledger.GetHistory(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, history)
}
