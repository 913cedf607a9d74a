package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxBodyBytes caps how much of a response body is read
const maxBodyBytes = 4 << 20

// Advisor answers one chat turn
type Advisor interface {
	Ask(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// AdvisorClient talks to the advisory backend over HTTP
type AdvisorClient struct {
	baseURL    string
	chatPath   string
	healthPath string
	httpClient *http.Client
}

// AdvisorOption configures an AdvisorClient
type AdvisorOption func(*AdvisorClient)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) AdvisorOption {
	return func(a *AdvisorClient) { a.httpClient = c }
}

// WithPaths overrides the chat and health endpoint paths
func WithPaths(chatPath, healthPath string) AdvisorOption {
	return func(a *AdvisorClient) {
		if chatPath != "" {
			a.chatPath = chatPath
		}
		if healthPath != "" {
			a.healthPath = healthPath
		}
	}
}

// WithRequestTimeout bounds each HTTP exchange at the transport. Zero
// leaves requests unbounded.
func WithRequestTimeout(d time.Duration) AdvisorOption {
	return func(a *AdvisorClient) {
		c := *a.httpClient
		c.Timeout = d
		a.httpClient = &c
	}
}

// NewAdvisorClient creates a client for the backend at baseURL
func NewAdvisorClient(baseURL string, opts ...AdvisorOption) *AdvisorClient {
	a := &AdvisorClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		chatPath:   "/api/chat",
		healthPath: "/health",
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BaseURL returns the backend root URL
func (a *AdvisorClient) BaseURL() string {
	return a.baseURL
}

// Ask posts one message with its building context
func (a *AdvisorClient) Ask(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	url := a.baseURL + a.chatPath

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &TransportError{Op: "encode", URL: url, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Op: "request", URL: url, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	LogDebug("POST %s (%d bytes)", url, len(payload))
	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: "request", URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: "read", URL: url, Err: err}
	}
	LogDebug("POST %s -> %d (%d bytes)", url, resp.StatusCode, len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &BackendError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	out, err := DecodeChatResponse(body)
	if err != nil {
		return nil, &ParseError{Source: "chat", StatusCode: resp.StatusCode, Err: err}
	}
	return out, nil
}

// Health checks the backend health endpoint
func (a *AdvisorClient) Health(ctx context.Context) error {
	url := a.baseURL + a.healthPath

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &TransportError{Op: "request", URL: url, Err: err}
	}
	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Op: "request", URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Op: "read", URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &BackendError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var status struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return &ParseError{Source: "health", StatusCode: resp.StatusCode, Err: err}
	}
	if !status.OK {
		return &BackendError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// DecodeChatResponse decodes a success body. The body must be a JSON
// object; within it every field is optional and a field of the wrong
// type falls back to its default.
func DecodeChatResponse(body []byte) (*ChatResponse, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("response body is null")
	}

	out := &ChatResponse{
		Answer:  lenientString(fields["answer"]),
		Applies: ParseApplies(lenientString(fields["applies"])),
		Reason:  lenientString(fields["reason"]),
		Sources: []SourceCitation{},
	}

	var rawSources []json.RawMessage
	if err := json.Unmarshal(fields["sources"], &rawSources); err == nil {
		for _, raw := range rawSources {
			out.Sources = append(out.Sources, decodeSource(raw))
		}
	}
	return out, nil
}

func decodeSource(raw json.RawMessage) SourceCitation {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return SourceCitation{}
	}
	src := SourceCitation{
		ChunkID: lenientString(fields["chunk_id"]),
		Excerpt: lenientString(fields["excerpt"]),
	}
	if page, ok := lenientNumber(fields["page"]); ok {
		src.Page = int(page)
	}
	if score, ok := lenientNumber(fields["score"]); ok {
		src.Score = &score
	}
	return src
}

// lenientString returns the string value of raw, or "" for anything else
func lenientString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// lenientNumber returns the numeric value of raw. Absent, null and
// non-numeric values report false.
func lenientNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}
