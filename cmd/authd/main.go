package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "authd",
	Short: "Passkey authentication service",
	Long: `authd is an invitation-gated passkey authentication service.

Registration requires a valid invitation token; authentication is a
discoverable-credential WebAuthn ceremony; sessions are opaque bearer tokens.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
