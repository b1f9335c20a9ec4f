package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"daily-tracker/internal/repository"
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := repository.Migrate(a.db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date: %s\n", a.cfg.DatabaseURL)
			return nil
		},
	}
}
