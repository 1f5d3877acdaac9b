package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewKBCmd creates the kb command group for knowledge-base maintenance.
func NewKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Inspect and maintain the saved knowledge base",
		Long: `The kb commands operate on knowledge bases written by research
sessions with --snapshot: count indexed chunks, list stored sessions,
or clear everything.`,
	}

	cmd.PersistentFlags().String("data-dir", "",
		"Knowledge base directory (default: XDG data directory)")

	cmd.AddCommand(newKBCountCmd())
	cmd.AddCommand(newKBSessionsCmd())
	cmd.AddCommand(newKBClearCmd())

	return cmd
}

// newKBCountCmd creates the kb count command.
func newKBCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of indexed chunks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd, false)
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.ChunkCount(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d chunks indexed\n", count)
			return nil
		},
	}
}

// newKBSessionsCmd creates the kb sessions command.
func newKBSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List stored research sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd, false)
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions stored.")
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %s  (%s)\n",
					s.Created.Format("2006-01-02 15:04"), s.State, s.Seed, s.ID)
			}
			return nil
		},
	}
}

// newKBClearCmd creates the kb clear command.
func newKBClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored sessions and chunks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd, false)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Knowledge base cleared.")
			return nil
		},
	}
}
