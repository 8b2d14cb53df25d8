package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookchat/bookchat/internal/chat"
	"github.com/bookchat/bookchat/internal/client"
)

var askSelection string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Long: `Ask sends one question to the backend and prints the answer with its
citations. The exchange is appended to the stored conversation, so a later
interactive session continues from it.

With --selection the question is scoped to the given text excerpt, the way
a highlighted passage would be.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSelection, "selection", "", "text excerpt the question refers to")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question is empty")
	}

	sess := rt.currentOrNewSession()
	sessionID := sess.ID.String()

	answer, err := askQuery(ctx, rt, question, sessionID)
	if err != nil {
		return err
	}

	fmt.Println(answer.Answer)
	for _, src := range answer.Sources {
		ref := src.Chapter
		if src.Section != "" {
			ref += " › " + src.Section
		}
		fmt.Printf("  [%s] %s\n", ref, src.ContentExcerpt)
	}

	// Record the exchange so an interactive session picks it up.
	messages, _ := rt.store.ConversationHistory()
	messages = append(messages, chat.NewUserMessage(question))
	messages = append(messages, chat.Message{
		ID:         answer.MessageID,
		Type:       chat.TypeAssistant,
		Content:    answer.Answer,
		Sources:    answer.Sources,
		Confidence: answer.Confidence,
		Timestamp:  time.Now(),
	})
	rt.store.SaveConversation(messages)

	return nil
}

func askQuery(ctx context.Context, rt *runtime, question, sessionID string) (*client.Answer, error) {
	if askSelection != "" {
		chapter := chat.ChapterFromPath(rt.cfg.Page)
		return rt.client.QuerySelection(ctx, askSelection, question, sessionID, chapter, "")
	}
	return rt.client.Query(ctx, question, sessionID, rt.cfg.Page)
}
