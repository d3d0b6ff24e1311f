package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gentletalk/internal/errs"
)

func TestOpenAIClientComplete(t *testing.T) {
	var gotModel string
	var gotMessages int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body struct {
			Model    string            `json:"model"`
			Messages []json.RawMessage `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		gotMessages = len(body.Messages)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m",` +
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  summary  "}}],` +
			`"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(Options{APIKey: "k", BaseURL: srv.URL, Model: "gpt-test", Temperature: 0.3, Timeout: time.Second})
	got, err := client.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "summary" {
		t.Fatalf("Complete() = %q", got)
	}
	if gotModel != "gpt-test" || gotMessages != 2 {
		t.Fatalf("request model = %q messages = %d", gotModel, gotMessages)
	}
}

func TestOpenAIClientDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(Options{APIKey: "k", BaseURL: srv.URL, Model: "gpt-test"})
	_, err := client.Complete(context.Background(), "system", "user")
	if !errs.IsKind(err, errs.KindProviderError) {
		t.Fatalf("Complete() error = %v, want provider error", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("provider calls = %d, want 1", calls.Load())
	}
}
