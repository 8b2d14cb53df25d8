package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var sessionsYes bool

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "Inspect and manage the local session state",
	RunE:    runSessionsShow,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session and stored conversation",
	RunE:  runSessionsShow,
}

var sessionsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Discard the current session and start a fresh one",
	RunE:  runSessionsNew,
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored conversation, keeping the session",
	RunE:  runSessionsClear,
}

func init() {
	sessionsCmd.PersistentFlags().BoolVarP(&sessionsYes, "yes", "y", false, "skip the confirmation prompt")
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	sess, ok := rt.store.Current()
	if !ok {
		fmt.Println("No active session.")
		return nil
	}

	fmt.Printf("Session:    %s\n", sess.ID)
	fmt.Printf("Browser ID: %s\n", sess.BrowserID)
	fmt.Printf("Created:    %s\n", sess.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Expires:    %s\n", sess.ExpiresAt.Format(time.RFC3339))
	if sess.PageContext != "" {
		fmt.Printf("Page:       %s\n", sess.PageContext)
	}

	messages, ok := rt.store.ConversationHistory()
	if !ok || len(messages) == 0 {
		fmt.Println("\nNo stored conversation.")
		return nil
	}

	fmt.Printf("\nConversation (%d messages):\n", len(messages))
	for _, msg := range messages {
		fmt.Printf("  %s  %-9s  %s\n",
			msg.Timestamp.Format("2006-01-02 15:04"),
			msg.Type,
			firstLine(msg.Content))
	}
	return nil
}

func runSessionsNew(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	if !confirm("Start a new session? The current session and conversation will be deleted.") {
		fmt.Println("Canceled.")
		return nil
	}

	rt.store.Delete()
	sess := rt.store.Create(rt.cfg.Page)
	fmt.Printf("New session: %s\n", sess.ID)
	return nil
}

func runSessionsClear(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	if !confirm("Delete the stored conversation?") {
		fmt.Println("Canceled.")
		return nil
	}

	rt.store.ClearConversation()
	fmt.Println("Conversation cleared.")
	return nil
}

// confirm asks for a y/n answer on stdin unless --yes was given. Anything
// but an explicit yes declines.
func confirm(prompt string) bool {
	if sessionsYes {
		return true
	}
	fmt.Printf("%s [y/N] ", prompt)

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const max = 80
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}
