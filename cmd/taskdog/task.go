package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskdog/taskdog/internal/config"
	"github.com/taskdog/taskdog/internal/logger"
	"github.com/taskdog/taskdog/internal/report"
	"github.com/taskdog/taskdog/internal/task"
	"github.com/taskdog/taskdog/internal/taskdog"
)

func newTaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, list, and inspect tasks against the configured storage",
	}
	cmd.AddCommand(newTaskListCommand())
	cmd.AddCommand(newTaskCreateCommand())
	cmd.AddCommand(newTaskShowCommand())
	return cmd
}

func newTaskListCommand() *cobra.Command {
	var status, tag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, closeRepo, err := openForCLI(cmd)
			if err != nil {
				return err
			}
			defer closeRepo()

			tasks, err := core.ListTasks(cmd.Context(), taskdog.TaskFilter{
				Status: task.Status(status),
				Tag:    tag,
			})
			if err != nil {
				return err
			}
			report.Tasks(cmd.OutOrStdout(), tasks, time.Now())
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&tag, "tag", "", "filter by tag")
	return cmd
}

func newTaskCreateCommand() *cobra.Command {
	var priority int
	var tags string
	var estimatedHours float64

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, closeRepo, err := openForCLI(cmd)
			if err != nil {
				return err
			}
			defer closeRepo()

			in := taskdog.CreateTaskInput{}
			if tags != "" {
				in.Tags = strings.Split(tags, ",")
			}
			if estimatedHours > 0 {
				in.EstimatedDuration = &estimatedHours
			}

			tk, err := core.CreateTask(cmd.Context(), args[0], priority, in,
				taskdog.Actor{ClientID: "cli", UserName: cliUserName()})
			if err != nil {
				return err
			}
			cmd.Printf("created task %d: %s\n", tk.ID, tk.Name)
			return nil
		},
	}
	cmd.Flags().IntVar(&priority, "priority", 50, "priority (positive integer; higher is more important)")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.Flags().Float64Var(&estimatedHours, "hours", 0, "estimated duration in hours")
	return cmd
}

func newTaskShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single task's detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			core, closeRepo, err := openForCLI(cmd)
			if err != nil {
				return err
			}
			defer closeRepo()

			detail, err := core.GetTaskDetail(cmd.Context(), id)
			if err != nil {
				return err
			}
			report.Tasks(cmd.OutOrStdout(), []*task.Task{detail.Task}, time.Now())
			cmd.Printf("has_notes=%v prereqs=%v dependents=%v\n", detail.HasNotes, detail.Prereqs, detail.Dependents)
			return nil
		},
	}
}

// openForCLI loads config and builds the service the same way serve
// does, for one-shot CLI invocations.
func openForCLI(cmd *cobra.Command) (*taskdog.Service, func() error, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	log := newLoggerFromConfig(cfg)
	ctx := logger.WithLogger(cmd.Context(), log)
	cmd.SetContext(ctx)
	return buildService(ctx, cfg)
}
