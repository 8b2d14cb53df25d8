package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bookchat/bookchat/internal/log"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, time.Second, log.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		override string
		siteHost string
		want     string
	}{
		{"override wins", "http://backend:9000", "example.com", "http://backend:9000"},
		{"override wins over localhost", "http://backend:9000", "localhost", "http://backend:9000"},
		{"localhost selects dev", "", "localhost", devBaseURL},
		{"loopback selects dev", "", "127.0.0.1", devBaseURL},
		{"other host selects prod", "", "textbook.example.com", prodBaseURL},
		{"empty host selects prod", "", "", prodBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveBaseURL(tt.override, tt.siteHost); got != tt.want {
				t.Errorf("ResolveBaseURL(%q, %q) = %q, want %q", tt.override, tt.siteHost, got, tt.want)
			}
		})
	}
}

func TestQuery_Success(t *testing.T) {
	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat/query" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"answer": "F equals ma.",
			"sources": []map[string]any{
				{"id": "src-1", "chapter": "dynamics", "content_excerpt": "Newton's second law", "confidence_score": 0.92},
			},
			"session_id": "sess-1",
			"message_id": "msg-1",
			"confidence": 0.88,
		})
	})

	answer, err := c.Query(context.Background(), "what is F=ma?", "sess-1", "/docs/dynamics")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if gotBody["question"] != "what is F=ma?" {
		t.Errorf("question = %v", gotBody["question"])
	}
	if gotBody["session_id"] != "sess-1" {
		t.Errorf("session_id = %v", gotBody["session_id"])
	}
	if gotBody["page_context"] != "/docs/dynamics" {
		t.Errorf("page_context = %v", gotBody["page_context"])
	}

	if answer.Answer != "F equals ma." {
		t.Errorf("Answer = %q", answer.Answer)
	}
	if answer.MessageID != "msg-1" {
		t.Errorf("MessageID = %q", answer.MessageID)
	}
	if len(answer.Sources) != 1 || answer.Sources[0].Chapter != "dynamics" {
		t.Errorf("Sources = %+v", answer.Sources)
	}
	if answer.Confidence != 0.88 {
		t.Errorf("Confidence = %v", answer.Confidence)
	}
}

func TestQuerySelection_RequestShape(t *testing.T) {
	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat/selection" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"answer":     "It relates force to acceleration.",
			"session_id": "sess-1",
			"message_id": "msg-2",
			"confidence": 1.0,
		})
	})

	selected := "Newton's second law states F=ma"
	_, err := c.QuerySelection(context.Background(), selected, "explain this", "sess-1", "dynamics", "")
	if err != nil {
		t.Fatalf("QuerySelection: %v", err)
	}

	if gotBody["selected_text"] != selected {
		t.Errorf("selected_text = %v", gotBody["selected_text"])
	}
	if gotBody["chapter"] != "dynamics" {
		t.Errorf("chapter = %v", gotBody["chapter"])
	}
	if _, present := gotBody["section"]; present {
		t.Error("empty section should be omitted")
	}
}

func TestQuery_EmptyQuestion(t *testing.T) {
	c, err := New("http://unused", time.Second, log.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Query(context.Background(), "", "sess-1", ""); !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("err = %v, want ErrEmptyQuestion", err)
	}
}

func TestQuery_RateLimited(t *testing.T) {
	tests := []struct {
		name       string
		retryAfter string
		wantText   string
		wantDelay  time.Duration
	}{
		{"header present", "30", "30 seconds", 30 * time.Second},
		{"header absent", "", "60 seconds", 60 * time.Second},
		{"header unparsable", "later", "60 seconds", 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(http.StatusTooManyRequests)
			})

			_, err := c.Query(context.Background(), "q", "sess-1", "")
			var rateErr *RateLimitError
			if !errors.As(err, &rateErr) {
				t.Fatalf("err = %v, want RateLimitError", err)
			}
			if rateErr.RetryAfter != tt.wantDelay {
				t.Errorf("RetryAfter = %v, want %v", rateErr.RetryAfter, tt.wantDelay)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("message %q should contain %q", err.Error(), tt.wantText)
			}
		})
	}
}

func TestQuery_ServerDetail(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "question too long"})
	})

	_, err := c.Query(context.Background(), "q", "sess-1", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("Status = %d", apiErr.Status)
	}
	if err.Error() != "question too long" {
		t.Errorf("message = %q, want server detail", err.Error())
	}
}

func TestQuery_GenericError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Query(context.Background(), "q", "sess-1", "")
	if err == nil || err.Error() != "API error: 500" {
		t.Errorf("message = %v, want %q", err, "API error: 500")
	}
}

func TestHealth(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/health" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("method = %q", r.Method)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Status != "ok" {
		t.Errorf("Status = %q", h.Status)
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New("", time.Second, nil); err == nil {
		t.Error("expected error for empty base URL")
	}
}
