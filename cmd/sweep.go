package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/app"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/config"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/infra/logger"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/pkg/export"
)

var (
	parallelism int
	outPath     string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the configured parameter grid",
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().IntVarP(&parallelism, "parallelism", "p", 0, "concurrent runs (0 = number of CPUs)")
	sweepCmd.Flags().StringVarP(&outPath, "out", "o", "", "write results as .csv or .json")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	results, err := svc.RunSweep(ctx, parallelism)
	if err != nil {
		return err
	}
	if outPath == "" {
		return nil
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".json":
		return export.WriteJSON(f, results)
	case ".csv":
		return export.WriteCSV(f, results)
	default:
		return fmt.Errorf("unsupported output format: %s", outPath)
	}
}
