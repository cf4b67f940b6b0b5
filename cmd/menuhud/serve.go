package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ayatana-go/menuhud/internal/busservice"
	"github.com/ayatana-go/menuhud/internal/config"
	"github.com/ayatana-go/menuhud/internal/dbusmenu"
	"github.com/ayatana-go/menuhud/internal/indicator"
	"github.com/ayatana-go/menuhud/internal/menucache"
	"github.com/ayatana-go/menuhud/internal/search"
	"github.com/ayatana-go/menuhud/internal/settings"
)

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to the session bus and start serving suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a menuhud YAML config file")
	return cmd
}

func newLogger() *slog.Logger {
	color := isatty.IsTerminal(os.Stderr.Fd())
	level := slog.LevelInfo
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	if color {
		logger = logger.With("tty", true)
	}
	return logger
}

func runServe(ctx context.Context, configPath string) error {
	sessionID := uuid.NewString()
	logger := newLogger().With("session", sessionID)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("serve: load config: %w", err)
	}
	settings.Init(cfg.ResolveSettings())

	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		// Bus connection unavailable at startup: log critical and do not
		// serve; no retry.
		logger.Error("serve: session bus connection failed", "error", err)
		return fmt.Errorf("serve: connect session bus: %w", err)
	}
	defer conn.Close()

	client := dbusmenu.NewClient(conn)
	cache := menucache.New(client.New)

	tracker := indicator.NewTracker(conn, logger, cfg.ResolveIndicators())
	if err := tracker.Poll(ctx); err != nil {
		logger.Warn("serve: initial indicator poll failed", "error", err)
	}

	engine := search.New(cache, tracker, settings.Current())

	svc := busservice.New(conn, cache, engine, logger, cfg.Focused.BusName, cfg.Focused.ObjectPath)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("serve: start bus service: %w", err)
	}

	logger.Info("serve: menuhud started", "focused_bus_name", cfg.Focused.BusName, "focused_object_path", cfg.Focused.ObjectPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case sig := <-sigCh:
		logger.Info("serve: received signal, shutting down", "signal", sig.String())
	}

	// Teardown in strict reverse order of acquisition: unregister object,
	// unsubscribe signal (both inside Stop), drop cache, drop tracker,
	// close the connection (deferred above).
	svc.Stop()
	return nil
}
