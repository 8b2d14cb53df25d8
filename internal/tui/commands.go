package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/bookchat/bookchat/internal/chat"
	"github.com/bookchat/bookchat/internal/client"
)

// answerMsg carries a successful backend response.
type answerMsg struct {
	answer *client.Answer
}

// answerErrMsg carries a failed query. The failure becomes an error turn in
// the transcript; it is never retried.
type answerErrMsg struct {
	err error
}

// sendQuery dispatches the question to the backend. The call blocks inside
// the command, not the event loop; the widget stays responsive while the
// query is outstanding. Requests are not cancelable: closing the widget
// hides the UI but the response still lands in state.
func (w *Widget) sendQuery(question, selection string) tea.Cmd {
	querier := w.querier
	ctx := w.ctx
	sessionID := w.sess.ID.String()
	page := w.page

	return func() tea.Msg {
		var (
			answer *client.Answer
			err    error
		)
		if selection != "" {
			chapter := chat.ChapterFromPath(page)
			answer, err = querier.QuerySelection(ctx, selection, question, sessionID, chapter, "")
		} else {
			answer, err = querier.Query(ctx, question, sessionID, page)
		}
		if err != nil {
			return answerErrMsg{err: err}
		}
		return answerMsg{answer: answer}
	}
}
