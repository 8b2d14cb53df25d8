package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/bookchat/bookchat/internal/chat"
)

// Layout constants for viewport height calculation.
const (
	separatorLines = 2 // Separator lines above and below input
	helpLines      = 1 // Help bar height
	promptLines    = 1 // Prompt prefix line
	minViewport    = 3 // Minimum viewport height
)

// View implements tea.Model. Uses AltScreen with a viewport for the
// scrollable transcript.
func (w *Widget) View() tea.View {
	w.viewBuf.Reset()

	if !w.open {
		_, _ = w.viewBuf.WriteString(w.styles.System.Render("Chat hidden — press Ctrl+T to reopen."))
		if w.state == StatePending {
			_, _ = w.viewBuf.WriteString("\n")
			_, _ = w.viewBuf.WriteString(w.styles.System.Render("A question is still being answered."))
		}
		v := tea.NewView(w.viewBuf.String())
		v.AltScreen = true
		return v
	}

	_, _ = w.viewBuf.WriteString(w.viewport.View())
	_, _ = w.viewBuf.WriteString("\n")

	_, _ = w.viewBuf.WriteString(w.renderSeparator())
	_, _ = w.viewBuf.WriteString("\n")

	switch {
	case w.state == StateConfirm:
		_, _ = w.viewBuf.WriteString(w.styles.Error.Render(w.confirmPrompt()))
	case w.capturingSelection:
		_, _ = w.viewBuf.WriteString(w.styles.Prompt.Render("Paste excerpt> "))
		_, _ = w.viewBuf.WriteString(w.input.View())
	default:
		_, _ = w.viewBuf.WriteString(w.styles.Prompt.Render("> "))
		_, _ = w.viewBuf.WriteString(w.input.View())
	}
	_, _ = w.viewBuf.WriteString("\n")

	_, _ = w.viewBuf.WriteString(w.renderSeparator())
	_, _ = w.viewBuf.WriteString("\n")

	_, _ = w.viewBuf.WriteString(w.renderStatusBar())

	v := tea.NewView(w.viewBuf.String())
	v.AltScreen = true
	return v
}

// rebuildViewportContent reconstructs the transcript view from messages and
// state. Called when messages, the selection, or the pending state change.
func (w *Widget) rebuildViewportContent() {
	var b strings.Builder

	_, _ = b.WriteString(w.styles.RenderBanner())
	_, _ = b.WriteString("\n")

	for _, msg := range w.messages {
		switch msg.Type {
		case chat.TypeUser:
			_, _ = b.WriteString(w.styles.User.Render("You> "))
			_, _ = b.WriteString(msg.Content)
		case chat.TypeAssistant:
			_, _ = b.WriteString(w.styles.Assistant.Render("Book> "))
			_, _ = b.WriteString(w.markdown.Render(msg.Content))
			w.renderCitations(&b, msg)
		case chat.TypeError:
			_, _ = b.WriteString(w.styles.Error.Render("Error: " + msg.Content))
		}
		_, _ = b.WriteString("\n\n")
	}

	if w.notice != "" {
		_, _ = b.WriteString(w.styles.System.Render(w.notice))
		_, _ = b.WriteString("\n\n")
	}

	if w.selectedText != "" {
		_, _ = b.WriteString(w.styles.Selection.Render("Selection: " + truncate(w.selectedText, 120)))
		_, _ = b.WriteString("\n")
		_, _ = b.WriteString(w.styles.System.Render("The next question will be about this excerpt. Esc drops it."))
		_, _ = b.WriteString("\n\n")
	}

	if w.state == StatePending {
		_, _ = b.WriteString(w.spinner.View())
		_, _ = b.WriteString(" Thinking...\n\n")
	}

	w.viewport.SetContent(b.String())
}

// renderCitations lists an assistant turn's sources under the answer.
func (w *Widget) renderCitations(b *strings.Builder, msg chat.Message) {
	if len(msg.Sources) == 0 {
		return
	}
	_, _ = b.WriteString("\n")
	for _, src := range msg.Sources {
		loc := src.Chapter
		if src.Section != "" {
			loc += " › " + src.Section
		}
		line := fmt.Sprintf("  [%s] %s (%.2f)", loc, truncate(src.ContentExcerpt, 80), src.ConfidenceScore)
		_, _ = b.WriteString(w.styles.Citation.Render(line))
		_, _ = b.WriteString("\n")
	}
}

func (w *Widget) confirmPrompt() string {
	switch w.pendingAction {
	case confirmClearHistory:
		return "Clear the conversation history? This cannot be undone. (y/n)"
	case confirmNewSession:
		return "Start a new session? The current conversation will be lost. (y/n)"
	default:
		return ""
	}
}

func (w *Widget) renderSeparator() string {
	width := w.width
	if width <= 0 {
		width = 80
	}
	return w.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns state-appropriate keyboard shortcut help.
func (w *Widget) renderStatusBar() string {
	var bindings []key.Binding
	switch w.state {
	case StateInput:
		bindings = []key.Binding{
			w.keys.Submit, w.keys.Select, w.keys.Toggle,
			w.keys.History, w.keys.Quit,
		}
	case StatePending:
		bindings = []key.Binding{
			w.keys.Toggle, w.keys.ScrollUp, w.keys.ScrollDown, w.keys.Quit,
		}
	case StateConfirm:
		bindings = []key.Binding{w.keys.Confirm}
	}
	return w.help.ShortHelpView(bindings)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
