package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"daily-tracker/internal/httpapi"
)

var (
	tokenSubject string
	tokenPicture string
	tokenTTL     time.Duration
)

// NewTokenCmd creates the token command
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development API token",
		Long: `Sign a bearer token with JWT_SECRET for the given subject. The API creates
the user on first use.

Examples:
  dailyplanner token --subject alice
  dailyplanner token --subject alice --ttl 1h`,
		Args: cobra.NoArgs,
		RunE: runToken,
	}
	cmd.Flags().StringVar(&tokenSubject, "subject", "", "User identifier carried in the token")
	cmd.Flags().StringVar(&tokenPicture, "picture", "", "Profile image URL")
	cmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime, 0 for no expiry")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireJWT(); err != nil {
		return err
	}
	token, err := httpapi.IssueToken(cfg.JWTSecret, tokenSubject, tokenPicture, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
