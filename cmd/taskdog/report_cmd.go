package main

import (
	"github.com/spf13/cobra"

	"github.com/taskdog/taskdog/internal/report"
	"github.com/taskdog/taskdog/internal/task"
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print gantt, tag, and period statistics reports",
	}
	cmd.AddCommand(newReportGanttCommand())
	cmd.AddCommand(newReportTagsCommand())
	cmd.AddCommand(newReportStatsCommand())
	return cmd
}

func newReportGanttCommand() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "gantt",
		Short: "Print per-day allocations for tasks whose window intersects [from, to]",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, closeRepo, err := openForCLI(cmd)
			if err != nil {
				return err
			}
			defer closeRepo()

			rows, err := core.GetGanttData(cmd.Context(), task.DateKey(from), task.DateKey(to))
			if err != nil {
				return err
			}
			report.GanttRows(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "range start YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "range end YYYY-MM-DD (required)")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func newReportTagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "Print task count and logged hours per tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, closeRepo, err := openForCLI(cmd)
			if err != nil {
				return err
			}
			defer closeRepo()

			stats, err := core.GetTagStatistics(cmd.Context())
			if err != nil {
				return err
			}
			report.TagStatistics(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

func newReportStatsCommand() *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print task health statistics over a trailing period",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, closeRepo, err := openForCLI(cmd)
			if err != nil {
				return err
			}
			defer closeRepo()

			stats, err := core.CalculateStatistics(cmd.Context(), period)
			if err != nil {
				return err
			}
			report.Statistics(cmd.OutOrStdout(), stats)
			return nil
		},
	}
	cmd.Flags().StringVar(&period, "period", "30d", "7d, 30d, or all")
	return cmd
}
