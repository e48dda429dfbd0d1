package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hackseek/scraper/internal/engine"
	"github.com/hackseek/scraper/internal/status"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run scrape cycles on a recurring interval until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		sched := engine.NewScheduler(env.Engine, engine.SchedulerOptions{
			Interval: cfg.Schedule.Interval(),
			Backoff:  cfg.Schedule.Backoff(),
		})
		sched.Start()

		srv := status.NewServer(cfg.Status.Port, sched)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				zap.L().Error("status server failed", zap.Error(err))
			}
		}()

		<-ctx.Done()
		zap.L().Info("shutting down")
		_ = srv.Shutdown(cmd.Context())
		sched.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
