package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/bookchat/bookchat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat widget",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	sess := rt.currentOrNewSession()

	widget, err := tui.New(ctx, rt.client, rt.store, sess, rt.cfg.Page, rt.logger)
	if err != nil {
		return fmt.Errorf("creating chat widget: %w", err)
	}

	program := tea.NewProgram(widget, tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat widget exited: %w", err)
	}
	return nil
}
