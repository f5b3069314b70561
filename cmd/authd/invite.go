package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"passkey-auth/internal/config"
	"passkey-auth/internal/domain"
	"passkey-auth/internal/observability/logging"
	"passkey-auth/internal/service/impl"
	"passkey-auth/internal/store"
	"passkey-auth/pkg/db"
)

var (
	inviteEmail     string
	inviteRole      string
	inviteDays      int
	inviteInvitedBy string
)

// inviteCmd bootstraps the first admin: with no users yet, nobody can reach
// the invitation endpoint.
var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Issue an invitation token from the command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		slog.SetDefault(logging.NewLogger(logging.Config{
			ServiceName: cfg.ServiceName,
			Environment: cfg.Environment,
			Level:       "warn",
		}))

		gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL})
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		st := store.New(gdb)

		auth := impl.NewAuthServiceImpl(st, nil, impl.NewSessionServiceImpl(st))

		inv, err := auth.CreateInvitation(cmd.Context(), inviteEmail, inviteInvitedBy, domain.Role(inviteRole), inviteDays)
		if err != nil {
			return err
		}

		fmt.Printf("invitation for %s (expires %s)\ntoken: %s\n", inv.Email, inv.ExpiresAt.Format("2006-01-02 15:04 MST"), inv.Token)
		return nil
	},
}

func init() {
	inviteCmd.Flags().StringVar(&inviteEmail, "email", "", "invitee email (required)")
	inviteCmd.Flags().StringVar(&inviteRole, "role", string(domain.RoleAdmin), "role to grant on registration")
	inviteCmd.Flags().IntVar(&inviteDays, "days", 1, "days until the invitation expires")
	inviteCmd.Flags().StringVar(&inviteInvitedBy, "invited-by", "cli", "value recorded as the inviter")
	_ = inviteCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(inviteCmd)
}
