package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for clearseek.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clearseek",
		Short: "Bounded web research assistant",
		Long: `clearseek crawls a website from a seed URL within polite, explicit
budgets (depth, pages, time), builds a searchable knowledge base from
the pages it fetches, and answers questions with passages attributed
to their source URLs.

robots.txt is respected by default, including crawl-delay, and every
domain is paced with a minimum delay between requests.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewResearchCmd())
	cmd.AddCommand(NewQueryCmd())
	cmd.AddCommand(NewKBCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
