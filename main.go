package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PhilHem/go-totp-auth/backend/auth"
	"github.com/PhilHem/go-totp-auth/backend/config"
	"github.com/PhilHem/go-totp-auth/backend/database"
	"github.com/PhilHem/go-totp-auth/backend/logger"
	"github.com/PhilHem/go-totp-auth/backend/server"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if err := config.C.Validate(); err != nil {
		log.Fatal("Invalid config:", err)
	}

	// Initialize structured logging
	lg, err := logger.New(os.Stdout, config.C.Logging.Level, config.C.Logging.Format)
	if err != nil {
		log.Fatal("Failed to init logger:", err)
	}
	slog.SetDefault(lg)

	db, err := database.Open(config.C.DatabasePath)
	if err != nil {
		log.Fatal("Failed to init database:", err)
	}
	slog.Info("connected to database", "source", "main", "path", config.C.DatabasePath)

	tokens, err := auth.NewTokenIssuer(config.C.Token.Secret, config.C.Token.Issuer, config.C.Token.TTL)
	if err != nil {
		log.Fatal("Failed to init token issuer:", err)
	}

	hasher := auth.NewBcryptHasher(config.C.Password.BcryptCost)
	store := database.NewUserStore(db, hasher)
	svc := auth.NewService(store, hasher, auth.NewTOTP(config.C.TOTP.Issuer, config.C.TOTP.Skew), tokens)

	srv := &http.Server{
		Addr:              config.C.Listen,
		Handler:           server.NewHandler(svc, config.C.CORS.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "source", "main", "error", err.Error())
		}
	}()

	slog.Info("server starting", "source", "main", "listen", config.C.Listen, "tls", config.C.TLS.Enabled)
	fmt.Printf("Server is running at %s\n", config.C.Listen)

	if config.C.TLS.Enabled {
		err = srv.ListenAndServeTLS(config.C.TLS.Cert, config.C.TLS.Key)
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	slog.Info("server stopped", "source", "main")
}
