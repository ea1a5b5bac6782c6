package main

import (
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/taskdog/taskdog/internal/config"
	"github.com/taskdog/taskdog/internal/logger"
	"github.com/taskdog/taskdog/internal/task"
	"github.com/taskdog/taskdog/internal/taskdog"
)

func newOptimizeCommand() *cobra.Command {
	var algorithm, startDate string
	var forceOverride, includeAllDays bool

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run the scheduling optimizer once against the configured storage and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			log := newLoggerFromConfig(cfg)
			ctx := logger.WithLogger(cmd.Context(), log)

			core, closeRepo, err := buildService(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			start := task.NewDateKey(time.Now())
			if startDate != "" {
				start = task.DateKey(startDate)
			}

			summary, err := core.Optimize(ctx, taskdog.OptimizeRequest{
				Algorithm:      algorithm,
				StartDate:      start,
				ForceOverride:  forceOverride,
				IncludeAllDays: includeAllDays,
			}, taskdog.Actor{ClientID: "cli", UserName: cliUserName()})
			if err != nil {
				return err
			}

			cmd.Printf("%s scheduled=%d failed=%d range=%s..%s hours=%.1f\n",
				color.GreenString("done"), summary.ScheduledCount, summary.FailedCount,
				summary.RangeStart, summary.RangeEnd, summary.TotalHoursScheduled)
			for _, d := range summary.OverloadedDays {
				cmd.Printf("  %s %s\n", color.YellowString("overloaded day:"), d)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&algorithm, "algorithm", "", "scheduling algorithm (default: config default_algorithm)")
	cmd.Flags().StringVar(&startDate, "start", "", "start date YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&forceOverride, "force", false, "override tasks already manually fixed")
	cmd.Flags().BoolVar(&includeAllDays, "include-all-days", false, "schedule across weekends and holidays too")
	return cmd
}

func cliUserName() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cli"
}
