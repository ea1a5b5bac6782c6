package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskdog/taskdog/internal/build"
)

var cfgFile string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskdog",
		Short: "Dependency-aware task scheduler and workload optimizer",
		Long:  "taskdog [--config=<file>] <serve|optimize|task|report|migrate|version>",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config.yaml (default: discovered per internal/config.Load)")

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newOptimizeCommand())
	root.AddCommand(newTaskCommand())
	root.AddCommand(newReportCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the taskdog version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(fmt.Sprintf("%s %s", build.AppName, build.Version))
		},
	}
}
