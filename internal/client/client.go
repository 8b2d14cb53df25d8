// Package client implements the HTTP client for the textbook answering
// backend. It formats the two query modes (page-scoped and selection-scoped),
// normalizes responses, and classifies failures into typed errors. The client
// performs no retries; retry policy belongs to the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bookchat/bookchat/internal/chat"
	"github.com/bookchat/bookchat/internal/log"
)

// Base URLs selected by site host when no explicit override is configured.
const (
	devBaseURL  = "http://localhost:8000"
	prodBaseURL = "https://api.bookchat.dev"
)

const defaultTimeout = 30 * time.Second

// ErrEmptyQuestion indicates a query was attempted with no question text.
var ErrEmptyQuestion = errors.New("question is empty")

// ResolveBaseURL picks the backend base URL. An explicit override always
// wins; otherwise a localhost site host selects the development backend and
// any other host the production one.
func ResolveBaseURL(override, siteHost string) string {
	if override != "" {
		return override
	}
	if siteHost == "localhost" || siteHost == "127.0.0.1" {
		return devBaseURL
	}
	return prodBaseURL
}

// Answer is the normalized response to both query modes.
type Answer struct {
	Answer     string          `json:"answer"`
	Sources    []chat.Citation `json:"sources"`
	SessionID  string          `json:"session_id"`
	MessageID  string          `json:"message_id"`
	Confidence float64         `json:"confidence"`
}

// Health is the backend status report. Diagnostics only, never on the send
// path.
type Health struct {
	Status string `json:"status"`
}

type queryRequest struct {
	Question    string `json:"question"`
	SessionID   string `json:"session_id"`
	PageContext string `json:"page_context,omitempty"`
}

type selectionRequest struct {
	Question     string `json:"question"`
	SessionID    string `json:"session_id"`
	SelectedText string `json:"selected_text"`
	Chapter      string `json:"chapter"`
	Section      string `json:"section,omitempty"`
}

// Client talks to the answering backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     log.Logger
}

// New creates a Client for the given base URL. A nil logger defaults to
// slog's default logger; a zero timeout defaults to 30 seconds.
func New(baseURL string, timeout time.Duration, logger log.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("client: base URL is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = log.NewNop()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Query sends a page-scoped question and returns the normalized answer.
func (c *Client) Query(ctx context.Context, question, sessionID, pageContext string) (*Answer, error) {
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	req := queryRequest{
		Question:    question,
		SessionID:   sessionID,
		PageContext: pageContext,
	}

	var answer Answer
	if err := c.post(ctx, "/api/v1/chat/query", req, &answer); err != nil {
		return nil, err
	}

	c.logger.Debug("query answered",
		"session_id", sessionID,
		"sources", len(answer.Sources),
		"confidence", answer.Confidence)
	return &answer, nil
}

// QuerySelection sends a question scoped to a user-highlighted excerpt plus
// the chapter and optional section it came from.
func (c *Client) QuerySelection(ctx context.Context, selectedText, question, sessionID, chapter, section string) (*Answer, error) {
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	req := selectionRequest{
		Question:     question,
		SessionID:    sessionID,
		SelectedText: selectedText,
		Chapter:      chapter,
		Section:      section,
	}

	var answer Answer
	if err := c.post(ctx, "/api/v1/chat/selection", req, &answer); err != nil {
		return nil, err
	}

	c.logger.Debug("selection query answered",
		"session_id", sessionID,
		"chapter", chapter,
		"selection_len", len(selectedText))
	return &answer, nil
}

// Health checks backend availability.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return nil, fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read health response: %w", err)
	}
	if err := classifyStatus(resp, body); err != nil {
		return nil, err
	}

	var h Health
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("unmarshal health response: %w", err)
	}
	return &h, nil
}

// post sends a JSON body and decodes a JSON response into result.
func (c *Client) post(ctx context.Context, path string, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if err := classifyStatus(resp, respBody); err != nil {
		return err
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// classifyStatus converts a non-success response into a typed error.
// 429 becomes RateLimitError with the delay from Retry-After (60s when the
// header is absent or unparsable); any other non-2xx becomes APIError with
// the server's detail text when the body carried one.
func classifyStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := defaultRetryAfter
		if header := resp.Header.Get("Retry-After"); header != "" {
			if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{RetryAfter: retryAfter}
	}

	var detail struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(body, &detail)

	return &APIError{Status: resp.StatusCode, Detail: detail.Detail}
}
