package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var jobsLimit int

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Show recent scrape job history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		jobs, err := st.ListJobs(ctx, jobsLimit)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Println("no jobs recorded")
			return nil
		}

		fmt.Printf("%-20s %-14s %-10s %-6s %-6s %-6s\n",
			"STARTED", "PLATFORM", "STATUS", "FOUND", "SAVED", "ERRORS")
		for _, job := range jobs {
			fmt.Printf("%-20s %-14s %-10s %-6d %-6d %-6d\n",
				job.StartedAt.Local().Format(time.DateTime),
				job.Platform, job.Status,
				job.ItemsFound, job.ItemsSaved, job.ErrorsCount,
			)
		}
		return nil
	},
}

func init() {
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 20, "max jobs to show")
	rootCmd.AddCommand(jobsCmd)
}
