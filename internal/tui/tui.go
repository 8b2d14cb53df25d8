// Package tui provides the Bubble Tea chat widget for bookchat.
//
// The widget drives the full message-exchange cycle: it owns the in-memory
// transcript for the active render cycle, dispatches questions to the
// answering backend, and persists the transcript through the session store
// after every successful exchange.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/bookchat/bookchat/internal/chat"
	"github.com/bookchat/bookchat/internal/client"
	"github.com/bookchat/bookchat/internal/log"
	"github.com/bookchat/bookchat/internal/session"
)

// State represents the widget state machine while the widget is open.
type State int

// Widget states. While StatePending, further submits are dropped, not
// queued: at most one query is in flight per widget instance.
const (
	StateInput   State = iota // Awaiting user input
	StatePending              // Awaiting backend response
	StateConfirm              // Awaiting confirmation of a destructive action
)

// confirmAction identifies which destructive action awaits confirmation.
type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmClearHistory
	confirmNewSession
)

// minSelectionLen is the threshold below which a captured excerpt is ignored.
const minSelectionLen = 10

const maxHistory = 100 // Maximum input history entries

// Querier is the slice of the backend client the widget consumes.
// Interfaces are defined by the consumer; *client.Client satisfies it.
type Querier interface {
	Query(ctx context.Context, question, sessionID, pageContext string) (*client.Answer, error)
	QuerySelection(ctx context.Context, selectedText, question, sessionID, chapter, section string) (*client.Answer, error)
}

// Widget is the Bubble Tea model for the chat widget.
type Widget struct {
	// Input
	input      textarea.Model
	history    []string
	historyIdx int

	// State
	open          bool
	state         State
	pendingAction confirmAction
	lastCtrlC     time.Time

	// Selection capture: an excerpt longer than minSelectionLen runes makes
	// the next question selection-scoped.
	capturingSelection bool
	selectedText       string

	// Transcript. The widget owns the in-memory copy; the store owns the
	// persisted one.
	messages []chat.Message

	// notice is a transient line (help text, unknown command) rendered
	// outside the transcript and dropped on the next send.
	notice string

	// Rendering
	spinner  spinner.Model
	viewport viewport.Model
	viewBuf  strings.Builder
	help     help.Model
	keys     keyMap
	styles   Styles
	markdown *markdownRenderer

	// Dependencies
	querier Querier
	store   *session.Store
	sess    *session.Session
	page    string
	logger  log.Logger
	ctx     context.Context

	// Dimensions
	width  int
	height int
}

// New creates the chat widget. The transcript is rehydrated from the store;
// sess must be the live session the store returned or created.
func New(ctx context.Context, querier Querier, store *session.Store, sess *session.Session, page string, logger log.Logger) (*Widget, error) {
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}
	if querier == nil {
		return nil, errors.New("tui.New: querier is required")
	}
	if store == nil {
		return nil, errors.New("tui.New: store is required")
	}
	if sess == nil {
		return nil, errors.New("tui.New: session is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	ta := textarea.New()
	ta.Placeholder = "Ask about the textbook..."
	ta.SetHeight(1)
	ta.SetWidth(120)
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{Focused: cleanStyle, Blurred: cleanStyle})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{} // Keys are routed explicitly in handleKey

	w := &Widget{
		open:     true,
		input:    ta,
		spinner:  sp,
		viewport: vp,
		help:     help.New(),
		keys:     newKeyMap(),
		styles:   DefaultStyles(),
		history:  make([]string, 0, maxHistory),
		markdown: newMarkdownRenderer(80),
		querier:  querier,
		store:    store,
		sess:     sess,
		page:     page,
		logger:   logger,
		ctx:      ctx,
		width:    80,
	}

	if history, ok := store.ConversationHistory(); ok {
		w.messages = history
	}

	return w, nil
}

// Init implements tea.Model.
func (w *Widget) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		w.spinner.Tick,
		w.input.Focus(),
	)
}

// addMessage appends a turn to the in-memory transcript. The transcript is
// append-only and insertion-ordered; persistence is a separate, explicit
// step so failed queries never reach storage.
func (w *Widget) addMessage(msg chat.Message) {
	w.messages = append(w.messages, msg)
}
