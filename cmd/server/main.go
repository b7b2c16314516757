package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"journeylens/internal/app"
	"journeylens/internal/config"
)

const shutdownTimeout = 30 * time.Second

// @title JourneyLens API
// @version 1.0.0
// @description Customer interaction insights: rule-based intent, sentiment and churn risk.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var cfgFile string
	var skipSeed bool

	cmd := &cobra.Command{
		Use:           "journeylens-server",
		Short:         "Serve the JourneyLens insights API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			logger := config.NewLogger(os.Stderr, cfg.Log)
			slog.SetDefault(logger)

			if err := run(cmd.Context(), cfg, logger, skipSeed); err != nil {
				logger.Error("server stopped", "error", err)
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "YAML config file (env JOURNEYLENS_* overrides)")
	flags.BoolVar(&skipSeed, "skip-seed", false, "do not load demo data on start-up")
	flags.Int("port", 8000, "HTTP listen port")
	flags.String("db-driver", "sqlite", "storage driver: sqlite, mongo or memory")
	flags.String("db-path", "backend_data/journeylens.db", "SQLite database file")
	flags.String("redis-url", "", "Redis URL for dashboard caching")
	flags.String("log-level", "info", "debug, info, warn or error")

	v.BindPFlag("http.port", flags.Lookup("port"))
	v.BindPFlag("database.driver", flags.Lookup("db-driver"))
	v.BindPFlag("database.path", flags.Lookup("db-path"))
	v.BindPFlag("redis.url", flags.Lookup("redis-url"))
	v.BindPFlag("log.level", flags.Lookup("log-level"))

	return cmd
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, skipSeed bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			logger.Warn("close resources", "error", err)
		}
	}()

	if !skipSeed {
		if _, err := a.SeedService.Seed(ctx, a.SeedFiles(), false); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTP.Port),
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "version", cfg.APIVersion)
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
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}
