package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/colorvibe/internal/server"
	"github.com/jmylchreest/colorvibe/internal/telemetry"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ColorVibe web UI",
	Long: `Serve the ColorVibe web UI. Each browser gets its own session holding the
uploaded image, palette, font and animation. Sessions idle longer than
session.ttl are discarded.

Examples:
  # Listen on the default address (:8080)
  colorvibe serve

  # Listen on port 3000 using k-means extraction
  colorvibe serve --addr :3000 --algorithm kmeans

  # Export metrics to a local OTLP collector
  colorvibe serve --metrics --otlp-endpoint localhost:4317`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("algorithm", "mediancut", "extraction algorithm (mediancut, kmeans)")
	serveCmd.Flags().Int("count", 8, "colours requested from the quantiser (1-256)")
	serveCmd.Flags().Int64("max-upload", 10<<20, "maximum upload size in bytes")
	serveCmd.Flags().String("mood", "circular", "hue averaging for mood labels (circular, arithmetic)")
	serveCmd.Flags().Bool("metrics", false, "export OpenTelemetry metrics over OTLP gRPC")
	serveCmd.Flags().String("otlp-endpoint", "localhost:4317", "OTLP gRPC collector endpoint")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	if !logger.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:  cfg.Metrics.Enabled,
		Endpoint: cfg.Metrics.Endpoint,
		Insecure: cfg.Metrics.Insecure,
		Interval: cfg.Metrics.Interval,
	})
	if err != nil {
		return fmt.Errorf("failed to set up metrics: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Close(closeCtx); err != nil {
			logger.Warn("failed to flush metrics", "error", err)
		}
	}()

	srv, err := server.New(server.Options{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return err
	}

	logger.Info("starting colorvibe",
		"addr", cfg.Server.Addr,
		"algorithm", cfg.Extract.Algorithm,
		"mood", cfg.Mood.Averaging,
		"metrics", cfg.Metrics.Enabled,
	)
	return srv.Run(ctx)
}
