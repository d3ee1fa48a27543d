// Package main provides the entry point for the listview CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/listview/cmd/listview/commands"
	"github.com/Sumatoshi-tech/listview/pkg/version"
)

func main() {
	version.Init()

	rootCmd := &cobra.Command{
		Use:   "listview",
		Short: "Virtualized list view workloads and browser",
		Long: `listview replays scripted list workloads and browses files in a
virtualized terminal list.

Commands:
  replay    Run scenario files headlessly and report row reuse
  browse    Browse a file or directory full-screen`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	commands.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(commands.NewReplayCommand())
	rootCmd.AddCommand(commands.NewBrowseCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String("listview"))
		},
	}
}
