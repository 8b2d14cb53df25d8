package tui

import (
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/bookchat/bookchat/internal/chat"
)

// Update implements tea.Model.
func (w *Widget) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return w.handleKey(msg)

	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height

		inputHeight := w.input.Height() + promptLines
		fixedHeight := separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		w.viewport.SetWidth(msg.Width)
		w.viewport.SetHeight(vpHeight)
		w.input.SetWidth(msg.Width - 4)
		w.help.SetWidth(msg.Width)
		w.markdown.UpdateWidth(msg.Width)

		w.rebuildViewportContent()
		return w, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		w.viewport, cmd = w.viewport.Update(msg)
		return w, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		if w.state == StatePending {
			w.rebuildViewportContent()
		}
		return w, cmd

	case answerMsg:
		return w.handleAnswer(msg)

	case answerErrMsg:
		return w.handleAnswerErr(msg)
	}

	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	return w, cmd
}

// handleAnswer appends the assistant turn, persists the full transcript and
// clears the active selection. This is the single write path: memory and
// storage update together.
func (w *Widget) handleAnswer(msg answerMsg) (tea.Model, tea.Cmd) {
	w.state = StateInput

	w.addMessage(chat.Message{
		ID:         msg.answer.MessageID,
		Type:       chat.TypeAssistant,
		Content:    msg.answer.Answer,
		Sources:    msg.answer.Sources,
		Confidence: msg.answer.Confidence,
		Timestamp:  time.Now(),
	})
	w.store.SaveConversation(w.messages)
	w.selectedText = ""

	w.rebuildViewportContent()
	w.viewport.GotoBottom()
	return w, w.input.Focus()
}

// handleAnswerErr appends an error turn in transcript order. The failed
// exchange is not persisted; the last saved state remains the previous
// successful one.
func (w *Widget) handleAnswerErr(msg answerErrMsg) (tea.Model, tea.Cmd) {
	w.state = StateInput
	w.logger.Debug("query failed", "error", msg.err)

	w.addMessage(chat.NewErrorMessage(msg.err.Error()))

	w.rebuildViewportContent()
	w.viewport.GotoBottom()
	return w, w.input.Focus()
}
