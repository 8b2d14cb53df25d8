// Package cmd provides the bookchat CLI commands.
//
// Commands:
//   - chat: interactive chat widget (default when no command is given)
//   - ask: one-shot question, answer printed to stdout
//   - sessions: inspect and manage the local session state
//   - health: check backend availability
//   - version: build information
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bookchat",
	Short: "bookchat - terminal companion for the textbook chat backend",
	Long: `bookchat is a terminal chat client for the textbook answering backend.

It keeps a local session with a 30-day lifetime, remembers the full
conversation between runs, and supports questions scoped to a highlighted
text excerpt.

Running bookchat without a command starts the interactive chat widget.`,
	SilenceUsage: true,
	RunE:         runChat,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
