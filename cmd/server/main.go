package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/sketch-party-backend/internal/config"
	"github.com/DoyleJ11/sketch-party-backend/internal/httpapi"
	"github.com/DoyleJ11/sketch-party-backend/internal/hub"
	"github.com/DoyleJ11/sketch-party-backend/internal/logging"
	"github.com/DoyleJ11/sketch-party-backend/internal/ws"
)

const releaseVersion = "0.1.0"

func main() {
	cobra.CheckErr(newCmd().Execute())
}

// loadEnvFile reads path into the environment if it exists. Variables that
// are already set win.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

func newCmd() *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:     "sketch-party",
		Short:   "Room, chat and game coordinator for the sketch party web client.",
		Args:    cobra.NoArgs,
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadEnvFile(".env"); err != nil {
				return err
			}
			if err := config.ApplyEnv(cmd.Flags(), config.NewViper()); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel, cfg.Dev)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return run(cmd.Context(), cfg, logger)
		},
	}
	cfg.RegisterFlags(cmd.Flags())

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return cmd
}

func run(parent context.Context, cfg config.Config, logger *zap.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	h := hub.NewHub(hubCtx, hub.Config{
		Defaults: cfg.GameDefaults(),
		Logger:   logger.Named("hub"),
	})

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpapi.SetupRoutes(h, httpapi.Options{
			PublicURL: cfg.PublicURL,
			Logger:    logger.Named("http"),
			WS: ws.Config{
				ReadLimit:       cfg.MaxMessageBytes,
				OutboxSize:      cfg.OutboxSize,
				EventsPerSecond: cfg.EventsPerSecond,
				EventBurst:      cfg.EventBurst,
				PingInterval:    cfg.PingInterval,
				OriginPatterns:  cfg.AllowedOrigins,
				Logger:          logger.Named("ws"),
			},
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("version", releaseVersion))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		// Hijacked websockets are not tracked by Shutdown; closing the hub
		// closes their outboxes and with them the sockets.
		err := srv.Shutdown(sctx)
		h.Send(hub.ShutdownHub{})
		select {
		case <-h.Done():
		case <-sctx.Done():
			err = multierr.Append(err, fmt.Errorf("hub shutdown: %w", sctx.Err()))
		}
		return err
	})
	return g.Wait()
}
