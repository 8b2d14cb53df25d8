package chat

import (
	"testing"
	"time"
)

func TestNewUserMessage(t *testing.T) {
	before := time.Now()
	msg := NewUserMessage("what is a quaternion?")

	if msg.Type != TypeUser {
		t.Errorf("Type = %q, want %q", msg.Type, TypeUser)
	}
	if msg.ID == "" {
		t.Error("ID should be client-issued, got empty")
	}
	if msg.Content != "what is a quaternion?" {
		t.Errorf("Content = %q", msg.Content)
	}
	if msg.Timestamp.Before(before) {
		t.Error("Timestamp should not predate construction")
	}
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage("API error: 500")
	if msg.Type != TypeError {
		t.Errorf("Type = %q, want %q", msg.Type, TypeError)
	}
	if msg.Content != "API error: 500" {
		t.Errorf("Content = %q", msg.Content)
	}
	if msg.ID == "" {
		t.Error("ID should be client-issued, got empty")
	}
}

func TestMessageIDsAreUnique(t *testing.T) {
	a := NewUserMessage("first")
	b := NewUserMessage("second")
	if a.ID == b.ID {
		t.Errorf("consecutive messages share ID %q", a.ID)
	}
}

func TestChapterFromPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"docs chapter path", "/docs/chapter-3/section-2", "chapter-3"},
		{"docs chapter only", "/docs/kinematics", "kinematics"},
		{"bare chapter", "/ros2-basics/nodes", "ros2-basics"},
		{"root", "/", ""},
		{"empty", "", ""},
		{"docs alone", "/docs", "docs"},
		{"no leading slash", "docs/sensors", "sensors"},
		{"trailing slash", "/docs/control/", "control"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChapterFromPath(tt.path); got != tt.want {
				t.Errorf("ChapterFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
