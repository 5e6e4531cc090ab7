// Package client is the Go consumer of the doomsday API: a resilient
// HTTP transport with bounded retry, typed calls for every endpoint,
// and a polling state machine that waits for a session's verdict.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"doomsday-orchestrator/core/models"

	"go.uber.org/zap"
)

const (
	defaultMaxRetries = 2
	defaultRetryDelay = 1000 * time.Millisecond
)

// APIError is a definitive answer from the server (4xx). It is never
// retried: the request itself was malformed or rejected.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// TransportError is surfaced after the retry budget is exhausted on
// network failures or 5xx responses.
type TransportError struct {
	Attempts int
	Last     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure after %d attempts: %v", e.Attempts, e.Last)
}

func (e *TransportError) Unwrap() error { return e.Last }

// Client talks to the doomsday API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	log        *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy sets the number of retries after the first attempt
// and the base delay; the delay before retry n is delay*n.
func WithRetryPolicy(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = delay
	}
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// send issues one logical request under the retry policy. Outcomes
// fall into three buckets: 4xx returns an APIError immediately, any
// 2xx (including the provisional 202) returns immediately, and 5xx or
// network failure is retried with a linear delay until the attempt
// budget runs out.
func (c *Client) send(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	attempts := c.maxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt-1)):
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			c.log.Debug("request failed", zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			msg := readErrorMessage(resp.Body)
			resp.Body.Close()
			return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
		default:
			lastErr = fmt.Errorf("server error: %s", resp.Status)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.log.Debug("server error", zap.String("path", path), zap.Int("attempt", attempt), zap.Int("status", resp.StatusCode))
		}
	}
	return nil, &TransportError{Attempts: attempts, Last: lastErr}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func readErrorMessage(body io.Reader) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	return "request rejected"
}

// Result is the polled analysis result. Verdict fields are present
// only when Status is completed.
type Result struct {
	SessionID   string              `json:"session_id"`
	Status      models.JobStatus    `json:"status"`
	DDay        *int                `json:"dday,omitempty"`
	SkillRisks  []models.SkillRisk  `json:"skill_risks,omitempty"`
	CareerCards []models.CareerCard `json:"career_cards,omitempty"`
}

// SubmitSurvey posts the survey for a session and returns the initial
// job status.
func (c *Client) SubmitSurvey(ctx context.Context, sessionID string, survey models.Survey) (models.JobStatus, error) {
	req := map[string]string{
		"session_id": sessionID,
		"name":       survey.Name,
		"job_title":  survey.JobTitle,
		"strengths":  survey.Strengths,
		"hobbies":    survey.Hobbies,
	}
	var resp struct {
		Status models.JobStatus `json:"status"`
	}
	if _, err := c.doJSON(ctx, http.MethodPost, "/survey", req, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// FetchResult polls the session's analysis result once. A provisional
// 202 comes back as a Result with status analyzing.
func (c *Client) FetchResult(ctx context.Context, sessionID string) (*Result, error) {
	var result Result
	if _, err := c.doJSON(ctx, http.MethodGet, "/result/"+sessionID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PostEntry adds a guestbook entry.
func (c *Client) PostEntry(ctx context.Context, sessionID, jobTitle string, dday int, message string) (entryID string, createdAt time.Time, err error) {
	req := map[string]interface{}{
		"session_id": sessionID,
		"job_title":  jobTitle,
		"dday":       dday,
		"message":    message,
	}
	var resp struct {
		EntryID   string    `json:"entry_id"`
		CreatedAt time.Time `json:"created_at"`
	}
	if _, err := c.doJSON(ctx, http.MethodPost, "/guestbook", req, &resp); err != nil {
		return "", time.Time{}, err
	}
	return resp.EntryID, resp.CreatedAt, nil
}

// ListEntries fetches one guestbook page. lastKey resumes a previous
// walk; the returned key is empty when the oldest entry was reached.
func (c *Client) ListEntries(ctx context.Context, limit int, lastKey string) ([]*models.GuestbookEntry, string, error) {
	path := fmt.Sprintf("/guestbook?limit=%d", limit)
	if lastKey != "" {
		path += "&last_key=" + lastKey
	}
	var resp struct {
		Items   []*models.GuestbookEntry `json:"items"`
		LastKey *string                  `json:"last_key"`
	}
	if _, err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, "", err
	}
	next := ""
	if resp.LastKey != nil {
		next = *resp.LastKey
	}
	return resp.Items, next, nil
}

// React adds one reaction to an entry and returns the updated counts.
func (c *Client) React(ctx context.Context, entryID, emoji string) (map[string]int, error) {
	var resp struct {
		Reactions map[string]int `json:"reactions"`
	}
	if _, err := c.doJSON(ctx, http.MethodPost, "/guestbook/"+entryID+"/reaction", map[string]string{"emoji": emoji}, &resp); err != nil {
		return nil, err
	}
	return resp.Reactions, nil
}
