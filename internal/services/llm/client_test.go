package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}, "finish_reason": "stop"},
		},
	})
	if err != nil {
		t.Fatalf("marshal completion: %v", err)
	}
	return body
}

func newTestClient(endpoint string, opts ...Option) *Client {
	base := []Option{
		WithRetryBackoff(time.Millisecond, 10*time.Millisecond),
		WithSleeper(func(time.Duration) {}),
	}
	return NewClient(Config{
		APIKey:  "test",
		BaseURL: endpoint,
		Model:   "test-model",
	}, append(base, opts...)...)
}

func TestCompleteSuccess(t *testing.T) {
	var gotAuth, gotModel string
	var gotMessages []map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req struct {
			Model    string              `json:"model"`
			Messages []map[string]string `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotModel = req.Model
		gotMessages = req.Messages
		w.Write(completionBody(t, `{"tags":["go"]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.Complete(context.Background(), "clean this article", "you are an editor")
	if !result.OK() {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Answer != `{"tags":["go"]}` {
		t.Fatalf("unexpected answer: %q", result.Answer)
	}
	if result.Elapsed <= 0 {
		t.Fatal("expected elapsed to be recorded")
	}
	if gotAuth != "Bearer test" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotModel != "test-model" {
		t.Fatalf("unexpected model: %q", gotModel)
	}
	if len(gotMessages) != 2 || gotMessages[0]["role"] != "system" || gotMessages[1]["role"] != "user" {
		t.Fatalf("unexpected messages: %v", gotMessages)
	}
}

func TestCompleteRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(completionBody(t, "answer"))
	}))
	defer server.Close()

	var delays []time.Duration
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "m"},
		WithRetryBackoff(time.Second, 10*time.Second),
		WithSleeper(func(d time.Duration) { delays = append(delays, d) }),
	)
	result := client.Complete(context.Background(), "prompt", "")
	if !result.OK() {
		t.Fatalf("expected success after retries, got %+v", result)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 requests, got %d", got)
	}
	if len(delays) != 2 || delays[0] != time.Second || delays[1] != 2*time.Second {
		t.Fatalf("unexpected backoff delays: %v", delays)
	}
}

func TestCompleteDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.Complete(context.Background(), "prompt", "")
	if result.OK() {
		t.Fatal("expected failure")
	}
	if result.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", result.StatusCode)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single request, got %d", calls.Load())
	}
}

func TestCompleteHonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write(completionBody(t, "answer"))
	}))
	defer server.Close()

	var delays []time.Duration
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "m"},
		WithRetryBackoff(time.Millisecond, 10*time.Second),
		WithSleeper(func(d time.Duration) { delays = append(delays, d) }),
	)
	result := client.Complete(context.Background(), "prompt", "")
	if !result.OK() {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(delays) != 1 || delays[0] != 2*time.Second {
		t.Fatalf("expected Retry-After delay, got %v", delays)
	}
}

func TestCompleteEmptyAnswerIsFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write(completionBody(t, ""))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.Complete(context.Background(), "prompt", "")
	if result.OK() {
		t.Fatal("expected failure for empty answer")
	}
	if result.StatusCode != http.StatusOK {
		t.Fatalf("empty answer should keep transport status 200, got %d", result.StatusCode)
	}
	if !strings.Contains(result.ErrMessage, "empty answer") {
		t.Fatalf("unexpected error message: %q", result.ErrMessage)
	}
	// Empty answers are retried before being reported.
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestCompleteValidatesInput(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	if result := client.Complete(context.Background(), "  ", ""); result.OK() || !strings.Contains(result.ErrMessage, "prompt required") {
		t.Fatalf("expected prompt validation failure, got %+v", result)
	}
	keyless := NewClient(Config{BaseURL: "http://127.0.0.1:0", Model: "m"})
	if result := keyless.Complete(context.Background(), "prompt", ""); result.OK() || !strings.Contains(result.ErrMessage, "api key required") {
		t.Fatalf("expected key validation failure, got %+v", result)
	}
}

func TestCompleteStopsOnCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "m"},
		WithRetryBackoff(time.Millisecond, time.Second),
		WithSleeper(func(time.Duration) { cancel() }),
	)
	result := client.Complete(ctx, "prompt", "")
	if result.OK() {
		t.Fatal("expected failure")
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody(t, "ok"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}

	broken := newTestClient(server.URL)
	broken.cfg.APIKey = ""
	if err := broken.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check failure without key")
	}
}
