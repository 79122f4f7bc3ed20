// Command goalctl is a terminal client for the SMART(ER) Goals API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "goalctl",
		Short:         "Plan and track SMART(ER) goals from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("server-url", "", "API base URL (default from preferences or http://localhost:8080)")
	rootCmd.PersistentFlags().String("config", "", "preferences file (default ~/.smartgoals/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log SDK activity to stderr")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newGoalsCmd())
	rootCmd.AddCommand(newGoalCmd())
	rootCmd.AddCommand(newTaskCmd())
	rootCmd.AddCommand(newBreakdownCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newPrefsCmd())
	return rootCmd
}
