package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-search-app/internal/config"
	"github.com/vzahanych/weather-search-app/internal/server"
	"go.uber.org/zap"
)

const seedTimeout = 30 * time.Second

func serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the weather HTTP server",
		Long:  `Start the HTTP server. The seed city is searched once before the server accepts traffic.`,
		RunE:  runServer,
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	log.Info("Starting weather search server",
		zap.String("config_path", configPath),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port),
		zap.String("seed_city", cfg.Weather.SeedCity))

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg, p, log.Logger, tele)

	seedCtx, seedCancel := context.WithTimeout(cmd.Context(), seedTimeout)
	state := p.Seed(seedCtx)
	seedCancel()
	log.Info("Seed search finished", zap.String("status", string(state.Status)))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Error("Server error", zap.Error(err))
		}
		return err
	case <-cmd.Context().Done():
		log.Info("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			return err
		}

		log.Info("Server shutdown complete")
		return nil
	}
}
