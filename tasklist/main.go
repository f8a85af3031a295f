package main

import (
	"fmt"
	"os"

	"github.com/chepyr/go-task-list/internal/config"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadFunc produces the configuration a command runs with.
type loadFunc func() (*config.Config, error)

func newRootCmd(load loadFunc) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tasklist",
		Short:         "Keep a list of tasks on this device",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd(load))
	rootCmd.AddCommand(listCmd(load))
	rootCmd.AddCommand(addCmd(load))
	rootCmd.AddCommand(editCmd(load))
	rootCmd.AddCommand(completeCmd(load))
	rootCmd.AddCommand(deleteCmd(load))
	rootCmd.AddCommand(historyCmd(load))
	rootCmd.AddCommand(themeCmd(load))

	return rootCmd
}
