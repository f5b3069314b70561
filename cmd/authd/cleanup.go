package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"passkey-auth/internal/config"
	"passkey-auth/internal/observability/logging"
	"passkey-auth/internal/service/impl"
	"passkey-auth/internal/store"
	"passkey-auth/pkg/db"
)

// cleanupCmd sweeps expired sessions and challenges. Meant for cron; the
// request path already treats expired rows as dead.
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired sessions and challenges",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		slog.SetDefault(logging.NewLogger(logging.Config{
			ServiceName: cfg.ServiceName,
			Environment: cfg.Environment,
			Level:       cfg.LogLevel,
		}))

		gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL})
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		st := store.New(gdb)

		sessions, err := impl.NewSessionServiceImpl(st).CleanupExpired(cmd.Context())
		if err != nil {
			return err
		}

		challenges, err := st.Challenges().DeleteExpired(cmd.Context(), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("cleanup challenges: %w", err)
		}

		slog.Info("cleanup finished", "sessions", sessions, "challenges", challenges)
		fmt.Printf("deleted %d sessions, %d challenges\n", sessions, challenges)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
