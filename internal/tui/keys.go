package tui

import (
	"strings"
	"time"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/bookchat/bookchat/internal/chat"
)

// Slash command constants.
const (
	cmdHelp  = "/help"
	cmdClear = "/clear"
	cmdNew   = "/new"
	cmdExit  = "/exit"
	cmdQuit  = "/quit"
)

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Submit     key.Binding
	Select     key.Binding
	Toggle     key.Binding
	History    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Esc        key.Binding
	Confirm    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Select:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "capture selection")),
		Toggle:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "hide/show chat")),
		History:    key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "history")),
		Cancel:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "clear input")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		Esc:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "drop selection")),
		Confirm:    key.NewBinding(key.WithKeys("y", "n"), key.WithHelp("y/n", "confirm")),
	}
}

func (w *Widget) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return w.handleCtrlC()
		case 'd':
			return w, tea.Quit
		case 't':
			// Toggling closed hides the transcript but never cancels an
			// in-flight query; its answer shows on reopen.
			w.open = !w.open
			return w, nil
		case 's':
			if w.open && w.state == StateInput {
				w.capturingSelection = !w.capturingSelection
			}
			return w, nil
		}
	}

	// While closed, only toggle and quit are handled above; everything
	// else is ignored.
	if !w.open {
		return w, nil
	}

	// Confirmation prompt swallows all keys except y/n/esc.
	if w.state == StateConfirm {
		return w.handleConfirmKey(k)
	}

	switch k.Code {
	case tea.KeyEnter:
		if k.Mod&tea.ModShift == 0 {
			return w.handleSubmit()
		}

	case tea.KeyUp:
		if w.state == StateInput && !w.capturingSelection && w.input.Line() == 0 {
			return w.navigateHistory(-1)
		}

	case tea.KeyDown:
		if w.state == StateInput && !w.capturingSelection && w.input.Line() == w.input.LineCount()-1 {
			return w.navigateHistory(1)
		}

	case tea.KeyEscape:
		if w.capturingSelection {
			w.capturingSelection = false
			return w, nil
		}
		if w.selectedText != "" {
			w.selectedText = ""
			w.rebuildViewportContent()
			return w, nil
		}

	case tea.KeyPgUp:
		w.viewport.PageUp()
		return w, nil

	case tea.KeyPgDown:
		w.viewport.PageDown()
		return w, nil
	}

	// Typing stays live even while a query is pending.
	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	return w, cmd
}

func (w *Widget) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()

	// Double Ctrl+C within 1 second quits.
	if now.Sub(w.lastCtrlC) < time.Second {
		return w, tea.Quit
	}
	w.lastCtrlC = now

	w.input.Reset()
	return w, nil
}

// handleSubmit runs the send protocol. Empty input is silently ignored, and
// a submit while a query is pending is dropped, not buffered.
func (w *Widget) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(w.input.Value())
	if text == "" {
		return w, nil
	}

	// A pending query blocks slash commands too, not just sends: a confirmed
	// /new here would let the stale answer land in the fresh session's
	// transcript, and leaving the confirm prompt would unlock a second send
	// while the first is still outstanding.
	if w.state != StateInput {
		return w, nil
	}

	if w.capturingSelection {
		return w.captureSelection(text)
	}

	if strings.HasPrefix(text, "/") {
		return w.handleSlashCommand(text)
	}

	w.notice = ""
	w.history = append(w.history, text)
	if len(w.history) > maxHistory {
		w.history = w.history[len(w.history)-maxHistory:]
	}
	w.historyIdx = len(w.history)

	// Optimistic user turn, appended before the network call.
	w.addMessage(chat.NewUserMessage(text))
	w.input.Reset()
	w.state = StatePending

	selection := w.selectedText
	w.rebuildViewportContent()
	w.viewport.GotoBottom()

	return w, tea.Batch(
		w.spinner.Tick,
		w.sendQuery(text, selection),
	)
}

// captureSelection records the entered excerpt as the active selection.
// Excerpts at or below the threshold are ignored.
func (w *Widget) captureSelection(text string) (tea.Model, tea.Cmd) {
	w.capturingSelection = false
	w.input.Reset()
	if utf8.RuneCountInString(text) > minSelectionLen {
		w.selectedText = text
	}
	w.rebuildViewportContent()
	return w, nil
}

func (w *Widget) handleSlashCommand(cmd string) (tea.Model, tea.Cmd) {
	switch cmd {
	case cmdHelp:
		w.notice = helpText
	case cmdClear:
		w.state = StateConfirm
		w.pendingAction = confirmClearHistory
	case cmdNew:
		w.state = StateConfirm
		w.pendingAction = confirmNewSession
	case cmdExit, cmdQuit:
		return w, tea.Quit
	default:
		w.notice = "Unknown command: " + cmd + " (see /help)"
	}
	w.input.Reset()
	w.rebuildViewportContent()
	w.viewport.GotoBottom()
	return w, nil
}

// handleConfirmKey resolves a pending destructive action. Both actions reset
// the in-memory transcript; clearing keeps the session, a new session
// replaces it.
func (w *Widget) handleConfirmKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case 'y':
		switch w.pendingAction {
		case confirmClearHistory:
			w.messages = nil
			w.store.ClearConversation()
		case confirmNewSession:
			w.messages = nil
			w.selectedText = ""
			w.store.Delete()
			w.sess = w.store.Create(w.page)
		}
	case 'n', tea.KeyEscape:
		// Canceled, nothing changes.
	default:
		return w, nil
	}

	w.pendingAction = confirmNone
	w.state = StateInput
	w.rebuildViewportContent()
	return w, nil
}

func (w *Widget) navigateHistory(delta int) (tea.Model, tea.Cmd) {
	if len(w.history) == 0 {
		return w, nil
	}

	w.historyIdx += delta
	if w.historyIdx < 0 {
		w.historyIdx = 0
	}
	if w.historyIdx > len(w.history) {
		w.historyIdx = len(w.history)
	}

	if w.historyIdx == len(w.history) {
		w.input.SetValue("")
	} else {
		w.input.SetValue(w.history[w.historyIdx])
		w.input.CursorEnd()
	}
	return w, nil
}

const helpText = "Commands: /help, /clear (clear history), /new (new session), /exit\n" +
	"Shortcuts:\n" +
	"  Enter: send question\n" +
	"  Ctrl+S: capture a textbook excerpt for a selection-scoped question\n" +
	"  Ctrl+T: hide/show the chat\n" +
	"  Esc: drop the active selection\n" +
	"  Up/Down: input history, PgUp/PgDn: scroll, Ctrl+D: exit"
