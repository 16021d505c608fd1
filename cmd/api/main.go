package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/simplelender/backend/internal/auth"
	"github.com/simplelender/backend/internal/config"
	"github.com/simplelender/backend/internal/db"
	borrowerdomain "github.com/simplelender/backend/internal/domain/borrower"
	txndomain "github.com/simplelender/backend/internal/domain/transaction"
	"github.com/simplelender/backend/internal/http/handlers"
	"github.com/simplelender/backend/internal/observability"
	"github.com/simplelender/backend/internal/repository/memory"
	postgresrepo "github.com/simplelender/backend/internal/repository/postgres"
	"github.com/simplelender/backend/internal/server"
	"github.com/simplelender/backend/internal/ws"
)

type stores struct {
	users        auth.Repository
	borrowers    borrowerdomain.Repository
	transactions txndomain.Repository
	pinger       handlers.Pinger
}

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	logger := observability.NewLogger(cfg.Env, cfg.LogFile)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		return err
	}
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var st stores
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		mem := memory.NewStore()
		st = stores{users: mem.Users(), borrowers: mem.Borrowers(), transactions: mem.Transactions()}
	default:
		pool, err := db.NewPostgresPool(ctx, cfg)
		if err != nil {
			logger.Error("failed to connect postgres", "err", err)
			return err
		}
		defer pool.Close()

		if cfg.DBAutoMigrate {
			if err := db.ApplyMigrations(ctx, pool); err != nil {
				logger.Error("failed to apply migrations", "err", err)
				return err
			}
		}
		st = stores{
			users:        db.NewUserRepository(pool),
			borrowers:    postgresrepo.NewBorrowerRepository(pool),
			transactions: postgresrepo.NewTransactionRepository(pool),
			pinger:       pool,
		}
	}

	if cfg.IsProduction() && cfg.JWTSigningKey == "dev-insecure-key-change-me" {
		logger.Warn("JWT_SIGNING_KEY is the development default")
	}

	hub := ws.NewHub(logger)
	jwtManager := auth.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSigningKey)
	authService := auth.NewService(st.users, jwtManager, auth.NewBcryptHasher(int(cfg.BcryptCost)), cfg.JWTAccessTTL)
	borrowerService := borrowerdomain.NewService(st.borrowers, hub)

	// The transaction service reads borrowers through the same store.
	borrowerReader, ok := st.borrowers.(txndomain.BorrowerRepository)
	if !ok {
		err := errors.New("borrower store cannot serve transaction lookups")
		logger.Error("failed to wire services", "err", err)
		return err
	}
	txnService := txndomain.NewService(borrowerReader, st.transactions, hub)

	r := server.NewRouter(cfg, logger, server.Dependencies{
		Pinger:             st.pinger,
		UserResolver:       authService,
		AuthHandler:        handlers.NewAuthHandler(authService),
		BorrowerHandler:    handlers.NewBorrowerHandler(borrowerService),
		TransactionHandler: handlers.NewTransactionHandler(txnService),
		WSHandler:          ws.NewHandler(hub, logger),
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", cfg.Addr(), "store", cfg.StoreDriver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
	case err, ok := <-serveErr:
		if ok {
			logger.Error("server failed", "err", err)
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	logger.Info("api server stopped")
	return nil
}

func loadConfig() (config.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load(), nil
}
