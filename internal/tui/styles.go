package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Accent color for the banner.
const accentColor = "#2E8B57"

var bannerArt = []string{
	"  ┌─┐  bookchat",
	"  │▣│  textbook companion",
	"  └─┘",
}

// Styles contains all lipgloss styles for the widget.
type Styles struct {
	Banner    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Error     lipgloss.Style
	Citation  lipgloss.Style
	Selection lipgloss.Style
	Prompt    lipgloss.Style
	Separator lipgloss.Style
}

// DefaultStyles returns the default style configuration. Error turns are
// styled distinctly from user and assistant turns so failures read as part
// of the conversation, not as modal interruptions.
func DefaultStyles() Styles {
	return Styles{
		Banner:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accentColor)),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Citation:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Selection: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("222")),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// RenderBanner returns the banner as a styled string.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range bannerArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
