package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/echelon/internal/server"
	"github.com/ppiankov/echelon/internal/usage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the classification form and JSON API",
	Long: `Serve starts the web form and the JSON API.

Routes:
  GET  /                  classification form
  POST /                  classify the submitted statement
  POST /api/v1/classify   {"statement": "..."} → verdict
  GET  /api/v1/laws       the seven Truth Echelon Laws
  GET  /api/v1/rules      the rule table in evaluation order
  GET  /api/v1/usage      remaining daily and session uses
  GET  /healthz           liveness

Submissions are capped per day and per session; the counters live in the
configured usage backend (memory, file or redis).

Example:
  echelon serve --addr :8080
  ECHELON_USAGE_BACKEND=redis ECHELON_USAGE_REDIS_ADDR=localhost:6379 echelon serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, cleanup, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	store, err := usage.NewStore(cfg.Usage)
	if err != nil {
		return fmt.Errorf("usage store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close usage store", zap.Error(err))
		}
	}()

	srv, err := server.New(p, store, cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Echelon listening on %s (engine: %s, usage: %s)\n", cfg.Server.Addr, p.Engine(), cfg.Usage.Backend)
	return srv.Run(ctx)
}
