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

	"github.com/spf13/cobra"

	"passkey-auth/internal/config"
	"passkey-auth/internal/observability/logging"
	"passkey-auth/internal/observability/metrics"
	"passkey-auth/internal/service/impl"
	"passkey-auth/internal/store"
	httpx "passkey-auth/internal/transport/http"
	"passkey-auth/internal/webauthn"
	"passkey-auth/pkg/db"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		logger := logging.NewLogger(logging.Config{
			ServiceName: cfg.ServiceName,
			Environment: cfg.Environment,
			Level:       cfg.LogLevel,
		})
		slog.SetDefault(logger)

		logger.Info("starting service")

		gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
		if err != nil {
			logger.Error("gorm open", "error", err)
			os.Exit(1)
		}
		st := store.New(gdb)

		verifier, err := webauthn.NewVerifier(&webauthn.Config{
			RPID:          cfg.RPID,
			RPDisplayName: cfg.RPDisplayName,
			RPOrigins:     cfg.RPOrigins,
		})
		if err != nil {
			logger.Error("webauthn init", "error", err)
			os.Exit(1)
		}

		sessions := impl.NewSessionServiceImpl(st)
		auth := impl.NewAuthServiceImpl(st, verifier, sessions)

		metrics.MustRegister(cfg.ServiceName)

		router := httpx.NewRouter(auth, sessions, httpx.RouterConfig{
			CORSOrigins:   cfg.CORSOrigins,
			SecureCookies: cfg.SecureCookies,
		})

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", srv.Addr, "rp_id", cfg.RPID)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
