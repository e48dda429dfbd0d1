package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	runSources  []string
	runMaxItems int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scrape cycle and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if runMaxItems > 0 {
			cfg.Scrape.MaxItemsPerRun = runMaxItems
		}

		env, err := initEnv(ctx, runSources)
		if err != nil {
			return err
		}
		defer env.Close()

		results := env.Engine.RunAll(ctx)

		failed := 0
		for _, r := range results {
			status := "ok"
			if !r.Success {
				status = "failed"
				failed++
			}
			fmt.Printf("%-14s %-7s found=%-4d saved=%-4d errors=%-4d duplicates=%-3d %s\n",
				r.Platform, status,
				r.ItemsFound, r.ItemsSaved, r.ErrorsCount, r.DuplicatesCount,
				r.Duration.Round(10*time.Millisecond),
			)
			if r.ErrorMessage != "" {
				fmt.Printf("  error: %s\n", r.ErrorMessage)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d sources failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runSources, "source", nil,
		"source names to run (default: all configured)")
	runCmd.Flags().IntVar(&runMaxItems, "max-items", 0,
		"cap discovered items per source (default: configured value)")
	rootCmd.AddCommand(runCmd)
}
