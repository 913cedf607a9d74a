package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest is one request seen by a fake backend
type RecordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// Recorder collects the requests a fake backend received
type Recorder struct {
	mu       sync.Mutex
	requests []RecordedRequest
}

// Requests returns a copy of the recorded requests
func (r *Recorder) Requests() []RecordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedRequest, len(r.requests))
	copy(out, r.requests)
	return out
}

// Len returns the number of recorded requests
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *Recorder) record(req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	req.Body = io.NopCloser(bytes.NewReader(body))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, RecordedRequest{
		Method:      req.Method,
		Path:        req.URL.Path,
		ContentType: req.Header.Get("Content-Type"),
		Body:        body,
	})
}

// NewBackend starts a fake advisory backend answering every chat request
// with status and body. /health always reports healthy.
func NewBackend(t *testing.T, status int, body string) (*httptest.Server, *Recorder) {
	t.Helper()
	rec := &Recorder{}
	return NewBackendFunc(t, rec, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}), rec
}

// NewBackendFunc starts a fake backend delegating chat requests to h
func NewBackendFunc(t *testing.T, rec *Recorder, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, HealthyBody)
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		if rec != nil {
			rec.record(r)
		}
		h(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// UnreachableURL returns the URL of a server that has already shut down
func UnreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}
