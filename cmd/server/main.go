package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/fritter-app/fritter/internal/auth"
	"github.com/fritter-app/fritter/internal/server"
	"github.com/fritter-app/fritter/internal/service"
	"github.com/fritter-app/fritter/internal/storage/sqlite"
	"github.com/fritter-app/fritter/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	addr := getEnv("ADDR", ":8080")
	dbPath := getEnv("DB_PATH", "./data/fritter.db")
	jwtSecret := getEnv("JWT_SECRET", "dev-secret-change-in-production")

	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		slog.Error("invalid TOKEN_TTL", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", dbPath)

	tokens := auth.NewJWTManager(jwtSecret, tokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	srv := server.New(
		store,
		tokens,
		service.NewAccountService(authenticator, tokens),
		service.NewFreetService(store),
		service.NewGroupService(store),
	)

	slog.Info("server starting", "address", addr)
	if err := http.ListenAndServe(addr, srv.Routes()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
