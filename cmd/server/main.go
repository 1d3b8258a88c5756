package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"societies/internal/config"
	"societies/internal/db"
	"societies/internal/handlers"
	"societies/internal/rbac"
	"societies/internal/store"
	"societies/internal/websocket"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	defer database.Close()

	societies := store.NewSocietyStore(database)
	residents := store.NewResidentStore(database)
	users := store.NewUserStore(database)
	roles := store.NewRoleStore(database)
	permissions := store.NewPermissionStore(database)
	societyAdmins := store.NewSocietyAdminStore(database)
	residentFinances := store.NewResidentFinanceStore(database)
	societyFinances := store.NewSocietyFinanceStore(database)
	rbacStore := store.NewRBACStore(database)
	txRunner := db.NewTxRunner(database)
	checker := rbac.NewChecker(rbacStore)
	hub := websocket.NewHub()

	handler := handlers.New(cfg, logger, txRunner, societies, residents, users, roles, permissions,
		societyAdmins, residentFinances, societyFinances, checker, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("societies API listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", zap.Error(err))
	}
}

func newLogger(appEnv string) (*zap.Logger, error) {
	if appEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
