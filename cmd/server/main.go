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

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"taskboard/internal/api"
	"taskboard/internal/config"
	"taskboard/internal/db"
	"taskboard/internal/logging"
	"taskboard/pkg/activity"
	"taskboard/pkg/task"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "taskboard-server:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "taskboard-server",
		Short:         "Serve the task board HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat))
		},
	}
	config.BindFlags(cmd.Flags())

	verify := &cobra.Command{
		Use:           "verify",
		Short:         "Verify the hash chain of the activity log",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			events, closeLog, err := openLog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeLog()
			if err := events.VerifyChain(cmd.Context()); err != nil {
				return err
			}
			n, _ := events.Count(cmd.Context())
			logger.Info("activity chain ok", "events", n)
			return nil
		},
	}
	config.BindFlags(verify.Flags())
	cmd.AddCommand(verify)
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var seed []task.Task
	if cfg.SeedFile != "" {
		var err error
		if seed, err = task.LoadSeed(cfg.SeedFile); err != nil {
			return err
		}
		logger.Info("loaded seed", "file", cfg.SeedFile, "tasks", len(seed))
	}
	store, err := task.NewMemStore(seed...)
	if err != nil {
		return err
	}

	events, closeLog, err := openLog(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	if err := events.VerifyChain(ctx); err != nil {
		logger.Warn("activity chain", "err", err)
	}

	bus := activity.NewBus(events)
	handler := api.New(task.NewRecorder(store, bus, logger), bus, logger, cfg.WebDir)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("taskboard listening", "addr", cfg.Addr, "durable_activity", cfg.DatabaseURL != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openLog returns the PostgreSQL activity log when a database is
// configured and the in-memory one otherwise.
func openLog(ctx context.Context, cfg *config.Config) (activity.Log, func(), error) {
	if cfg.DatabaseURL == "" {
		return activity.NewMemLog(), func() {}, nil
	}
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	events := activity.NewPgLog(pool)
	if err := events.EnsureTable(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ensure activity table: %w", err)
	}
	return events, pool.Close, nil
}
