package cmd

import (
	"strings"
	"testing"
)

func TestRootCommand_Subcommands(t *testing.T) {
	want := []string{"chat", "ask", "sessions", "health", "version"}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range want {
		if !registered[name] {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single line", "hello", "hello"},
		{"multiline keeps first", "first\nsecond", "first"},
		{"long line truncated", strings.Repeat("a", 100), strings.Repeat("a", 77) + "..."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstLine(tt.input); got != tt.want {
				t.Errorf("firstLine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfirm_YesFlagSkipsPrompt(t *testing.T) {
	sessionsYes = true
	defer func() { sessionsYes = false }()

	if !confirm("really?") {
		t.Error("confirm should succeed without prompting when --yes is set")
	}
}
