package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/nextcloud/ncp-activation/internal/adapters/crypto"
	"github.com/nextcloud/ncp-activation/internal/adapters/docker"
	"github.com/nextcloud/ncp-activation/internal/adapters/gitsource"
	"github.com/nextcloud/ncp-activation/internal/adapters/http"
	"github.com/nextcloud/ncp-activation/internal/adapters/systemd"
	"github.com/nextcloud/ncp-activation/internal/adapters/templating"
	"github.com/nextcloud/ncp-activation/internal/config"
	"github.com/nextcloud/ncp-activation/internal/core/services"
	ncplog "github.com/nextcloud/ncp-activation/internal/log"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ncp-activation",
		Short:        "Activate NextcloudPi and wait for the Nextcloud AIO stack to start",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the activation API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Query the container runtime once and print the AIO status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return check(cmd.Context(), cmd)
		},
	})
	return root
}

func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := ncplog.New(ncplog.Config{Level: cfg.LogLevel, Format: ncplog.Format(cfg.LogFormat)})
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	// 1. Templates
	if cfg.TemplateRepo != "" {
		if cfg.SourceDir == "" {
			return errors.New("NCP_TEMPLATE_REPO requires NCP_CONFIG_SOURCE")
		}
		if err := gitsource.New(cfg.TemplateRepo, cfg.TemplateRef, logger).Sync(ctx, cfg.SourceDir); err != nil {
			return err
		}
	}

	// 2. Adapters
	dockerAdapter, err := docker.NewAdapter()
	if err != nil {
		return err
	}
	defer dockerAdapter.Close()

	// 3. Services
	state := services.NewAppState()
	status := services.NewStatusService(dockerAdapter, logger)
	poller := services.NewReadinessPoller(status, cfg.PollInterval, logger)
	coordinator := services.NewActivationCoordinator(
		services.Dirs{Source: cfg.SourceDir, Target: cfg.TargetDir},
		services.ActivationDeps{
			Crypto:     crypto.New(crypto.DefaultParams),
			Store:      templating.NewJSONStore(),
			Renderer:   templating.NewRenderer(),
			Supervisor: systemd.NewNotifier(),
			Poller:     poller,
			State:      state,
		},
		logger,
	)
	terminator := services.NewTerminationScheduler(cfg.ExitDelay, nil, logger)

	go state.Follow(ctx, poller.Subscribe())
	go func() {
		if err := poller.Run(ctx); err != nil {
			state.PollingStopped(err)
		}
	}()

	// 4. HTTP
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	http.NewActivationHandler(coordinator, terminator, status, state, cfg.NextcloudURL).Routes(app)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.ListenAddr)
		errCh <- app.Listen(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
		return app.Shutdown()
	}
}

func check(ctx context.Context, cmd *cobra.Command) error {
	_, logger, err := setup()
	if err != nil {
		return err
	}
	dockerAdapter, err := docker.NewAdapter()
	if err != nil {
		return err
	}
	defer dockerAdapter.Close()

	result, err := services.NewStatusService(dockerAdapter, logger).CheckAioStarted(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.String())
	return nil
}
