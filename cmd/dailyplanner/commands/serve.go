package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"daily-tracker/internal/httpapi"
)

var serveAddr string

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve the planner over HTTP. Every /api route needs an HS256 bearer token
signed with JWT_SECRET whose subject identifies the user; "dailyplanner token"
mints one for development.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides HTTP_ADDR)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.cfg.RequireJWT(); err != nil {
		return err
	}

	addr := a.cfg.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := httpapi.NewServer(a.apiServices(), httpapi.NewJWTAuthenticator(a.cfg.JWTSecret, a.users), a.log)
	if err := srv.Run(cmd.Context(), addr); err != nil {
		return err
	}
	a.log.Info("server stopped", zap.String("addr", addr))
	return nil
}
