package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paper-trading-go/internal/account"
	"paper-trading-go/internal/config"
	"paper-trading-go/internal/database"
	"paper-trading-go/internal/ledger"
	"paper-trading-go/internal/logger"
	"paper-trading-go/internal/quote"

	"go.uber.org/zap"
)

const sessionTTL = 24 * time.Hour

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Connect to the database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Initialize the quote client and the services on top of it
	quotes := quote.NewRestClient(&cfg.Quote, log)
	accounts := account.NewService(db, &cfg.Account, log)
	ledgerSvc := ledger.NewService(db, quotes, log)
	sessions := NewSessionStore(sessionTTL)

	// Setup HTTP server
	mux := http.NewServeMux()
	apiHandler := NewAPIHandler(log, accounts, ledgerSvc, quotes, sessions)

	// API endpoints
	mux.HandleFunc("/api/register", apiHandler.RegisterHandler)
	mux.HandleFunc("/api/login", apiHandler.LoginHandler)
	mux.HandleFunc("/api/logout", apiHandler.LogoutHandler)
	mux.HandleFunc("/api/check", apiHandler.CheckHandler)
	mux.HandleFunc("/api/quote", apiHandler.QuoteHandler)
	mux.HandleFunc("/api/buy", apiHandler.BuyHandler)
	mux.HandleFunc("/api/sell", apiHandler.SellHandler)
	mux.HandleFunc("/api/portfolio", apiHandler.PortfolioHandler)
	mux.HandleFunc("/api/history", apiHandler.HistoryHandler)

	// Static file serving for CSS, JS, etc.
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))

	// HTML entry point
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/templates/index.html")
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	// Setup graceful shutdown
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Starting web server", zap.String("address", addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("Web server failed", zap.Error(err))
	}
	log.Info("Server has been shut down.")
}
