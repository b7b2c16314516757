package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"journeylens/internal/app"
	"journeylens/internal/config"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	v := config.New()
	var cfgFile string
	var dryRun bool
	var workers int

	cmd := &cobra.Command{
		Use:           "journeylens-seed",
		Short:         "Load the demo CSV files into the configured store",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			logger := config.NewLogger(os.Stderr, cfg.Log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if dryRun {
				// Nothing is written, so the store never needs to exist.
				cfg.Database.Driver = "memory"
				cfg.Redis.URL = ""
			}
			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())
			a.SeedService.SetWorkers(workers)

			if dryRun {
				return preview(ctx, a, out)
			}
			res, err := a.SeedService.Seed(ctx, a.SeedFiles(), false)
			if err != nil {
				return err
			}
			return json.NewEncoder(out).Encode(res)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "YAML config file (env JOURNEYLENS_* overrides)")
	flags.BoolVar(&dryRun, "dry-run", false, "print the analysis of every demo interaction as JSON lines without writing")
	flags.IntVar(&workers, "workers", 4, "interactions analyzed concurrently")
	flags.String("db-driver", "sqlite", "storage driver: sqlite, mongo or memory")
	flags.String("db-path", "backend_data/journeylens.db", "SQLite database file")
	flags.String("data-dir", "data", "directory holding the demo CSV files")

	v.BindPFlag("database.driver", flags.Lookup("db-driver"))
	v.BindPFlag("database.path", flags.Lookup("db-path"))
	v.BindPFlag("demo_data.dir", flags.Lookup("data-dir"))

	return cmd
}

func preview(ctx context.Context, a *app.App, out io.Writer) error {
	lines, err := a.SeedService.Preview(ctx, a.SeedFiles())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	for _, line := range lines {
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	a.Logger.Info("dry run complete", "interactions", len(lines))
	return nil
}
