// Package main is the entry point for the CodeVault sync server.
//
// The main package stays minimal — its job is to:
// 1. Read configuration (env vars, with an optional .env file)
// 2. Create dependencies (logger)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/handler,
// etc.). This separation keeps the app testable and its components reusable.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sakif/codevault/internal/server"
)

func main() {
	// A .env file is a convenience for local development; in production the
	// variables come from the real environment, so a missing file is fine.
	_ = godotenv.Load()

	// Text handler to stdout. Level comes from LOG_LEVEL (debug/info/warn/error),
	// defaulting to info so production logs stay quiet.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("LOG_LEVEL")),
	}))

	port := 8085
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// JWT_SECRET signs every session token. It must be a long random string:
	//   JWT_SECRET=$(openssl rand -hex 32)
	// Unlike a password there is no account recovery — rotating it invalidates
	// every outstanding session, so it is required rather than defaulted.
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET not set — refusing to start without a signing secret")
		os.Exit(1)
	}

	clientID := os.Getenv("OAUTH_CLIENT_ID")
	clientSecret := os.Getenv("OAUTH_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		logger.Error("OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET must both be set")
		os.Exit(1)
	}

	issuer := os.Getenv("OAUTH_ISSUER")
	if issuer == "" {
		issuer = "https://id.zitadel.ch"
	}

	redirectURI := os.Getenv("REDIRECT_URI")
	if redirectURI == "" {
		redirectURI = fmt.Sprintf("http://localhost:%d/v1/oauth", port)
	}

	// DB_PATH overrides the default for production deployments, e.g.
	// DB_PATH=/var/lib/codevault/prod.db. The parent directory is created
	// automatically so a fresh checkout runs without setup.
	dbPath := "data/codevault.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	cfg := server.Config{
		Port:         port,
		DBPath:       dbPath,
		JWTSecret:    jwtSecret,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		IssuerURL:    issuer,
		RedirectURI:  redirectURI,
	}

	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
