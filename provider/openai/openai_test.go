package openai_provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func fakeAPI(t *testing.T, status int, body string, got *capturedRequest, auth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompleteReturnsFirstChoice(t *testing.T) {
	var got capturedRequest
	var auth string
	srv := fakeAPI(t, http.StatusOK, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"# Hello"}},{"index":1,"message":{"role":"assistant","content":"other"}}]}`, &got, &auth)

	c := NewClient("gsk-test", srv.URL, 5*time.Second)
	out, err := c.Complete(context.Background(), "llama-3.3-70b-versatile", []Message{
		{Role: "system", Content: "be nice"},
		{Role: "user", Content: "hi"},
	}, 0.5, 128)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "# Hello" {
		t.Fatalf("expected first choice, got %q", out)
	}
	if auth != "Bearer gsk-test" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if got.Model != "llama-3.3-70b-versatile" || got.MaxTokens != 128 || got.Temperature != 0.5 {
		t.Fatalf("unexpected request: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "hi" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	srv := fakeAPI(t, http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`, nil, nil)
	c := NewClient("k", srv.URL, time.Second)
	out, err := c.Complete(context.Background(), "m", []Message{{Role: "user", Content: "hi"}}, 0, 0)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty answer, got %q", out)
	}
}

func TestCompleteAPIError(t *testing.T) {
	srv := fakeAPI(t, http.StatusUnauthorized, `{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`, nil, nil)
	c := NewClient("bad", srv.URL, time.Second)
	if _, err := c.Complete(context.Background(), "m", []Message{{Role: "user", Content: "hi"}}, 0, 0); err == nil {
		t.Fatalf("expected error for 401 response")
	}
}

func TestCompleteRequiresMessages(t *testing.T) {
	c := NewClient("k", "http://127.0.0.1:0", time.Second)
	if _, err := c.Complete(context.Background(), "m", nil, 0, 0); err == nil {
		t.Fatalf("expected error for empty messages")
	}
}
