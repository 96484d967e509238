package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/examiz/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve exam generation over HTTP",
	Long: `Serve the exam pipeline over HTTP.

Routes:
  POST /api/v1/exams       {"section","part","difficulty"}
  POST /api/v1/sections    {"section","difficulty"}
  GET  /api/v1/blueprints
  GET  /healthz

When a JWT secret is configured, /api/v1 requires an HS256 bearer token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		retries, _ := cmd.Flags().GetInt("retries")
		p, err := newPipeline(ctx, false, retries)
		if err != nil {
			return err
		}
		defer p.Close()

		cfg := appConfig.Server
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		var auth server.Authenticator = server.AllowAll{}
		if cfg.JWTSecret != "" {
			jwtAuth := server.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTIssuer)
			if sub, _ := cmd.Flags().GetString("issue-token"); sub != "" {
				token, err := jwtAuth.IssueToken(sub, 24*time.Hour)
				if err != nil {
					return fmt.Errorf("issue token: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
			}
			auth = jwtAuth
		} else {
			logger.Warn("no JWT secret configured, API is unauthenticated")
		}

		srv := server.New(p.generator, p.registry, auth, logger, server.Options{
			AllowedOrigins:    cfg.AllowedOrigins,
			RequestTimeout:    cfg.RequestTimeout,
			DefaultDifficulty: appConfig.Generation.Difficulty,
		})
		logger.Info("starting examiz server", zap.String("addr", cfg.Addr), zap.String("version", buildVersion()))
		return srv.ListenAndServe(ctx, cfg.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
	serveCmd.Flags().Int("retries", 0, "Retry transient provider failures this many times")
	serveCmd.Flags().String("issue-token", "", "Print a 24h bearer token for this subject on startup")
}
