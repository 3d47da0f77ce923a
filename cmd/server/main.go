package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/9-8-7-6/vito/configs"
	"github.com/9-8-7-6/vito/internal/handlers"
	"github.com/9-8-7-6/vito/internal/ledger"
	"github.com/9-8-7-6/vito/internal/logger"
	"github.com/9-8-7-6/vito/internal/routes"
	"github.com/9-8-7-6/vito/internal/seed"
	"github.com/9-8-7-6/vito/internal/store"
)

func main() {
	cfg, err := configs.Load()
	if err != nil {
		logger.Init(false)
		logger.Log.Fatal("failed to load config", zap.Error(err))
	}

	logger.Init(cfg.Server.Debug)
	defer logger.Log.Sync()

	db, err := store.NewDB(cfg.DB.DSN)
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	logger.Log.Info("connected to the database")

	if err := store.Migrate(db); err != nil {
		logger.Log.Fatal("migrations failed", zap.Error(err))
	}
	logger.Log.Info("migrations loaded")

	ledgerStore := store.NewLedger(db)
	svc := ledger.NewService(ledgerStore, logger.Log)

	if err := seed.Run(context.Background(), ledgerStore, svc, logger.Log); err != nil {
		logger.Log.Fatal("seed failed", zap.Error(err))
	}

	h := handlers.New(svc, ledgerStore, cfg.JWT.Secret, logger.Log)
	router := routes.New(h, cfg.JWT.Secret)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Log.Error("db close skipped, reason:", zap.Error(err))
	} else {
		sqlDB.Close()
		logger.Log.Info("db closed")
	}

	logger.Log.Info("server stopped")
}
