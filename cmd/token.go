package cmd

import (
	"fmt"
	"time"

	"committee-notifier/internal/auth"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the HTTP debt endpoints",
	Example: `  committee-notifier token --email chair@example.com --role committee --ttl 720h`,
	RunE:    runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("email", "", "Operator email stored in the token")
	tokenCmd.Flags().String("role", auth.RoleCommittee, "Role: admin or committee")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.MarkFlagRequired("email")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	role, _ := cmd.Flags().GetString("role")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	if role != auth.RoleAdmin && role != auth.RoleCommittee {
		return fmt.Errorf("role must be %q or %q", auth.RoleAdmin, auth.RoleCommittee)
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, tokenIssuer).GenerateToken(email, role, ttl)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
