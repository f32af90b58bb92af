package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestComplete_Success(t *testing.T) {
	var gotAuth string
	var gotReq openRouterChatReq

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "hi there"}},
			},
		})
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(OpenRouterConfig{
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		Model:       "openrouter/auto",
		Temperature: 0.5,
		MaxTokens:   256,
	})

	reply, err := p.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hello"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != "hi there" {
		t.Errorf("reply = %q, want %q", reply, "hi there")
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotReq.Model != "openrouter/auto" || gotReq.Temperature != 0.5 || gotReq.MaxTokens != 256 {
		t.Errorf("unexpected request body: %+v", gotReq)
	}
	if gotReq.Stream {
		t.Error("stream must be false")
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[1].Content != "hello" {
		t.Errorf("unexpected messages: %+v", gotReq.Messages)
	}
}

func TestComplete_UpstreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"message":"insufficient credits"}}`))
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(OpenRouterConfig{BaseURL: srv.URL, APIKey: "k", Model: "m"})

	_, err := p.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusPaymentRequired {
		t.Errorf("status = %d, want 402", ue.Status)
	}
	if ue.Message != "insufficient credits" {
		t.Errorf("message = %q", ue.Message)
	}
}

func TestComplete_EmptyChoicesIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(OpenRouterConfig{BaseURL: srv.URL, APIKey: "k", Model: "m"})

	_, err := p.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestComplete_EmptyContentIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":""}}]}`))
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(OpenRouterConfig{BaseURL: srv.URL, APIKey: "k", Model: "m"})

	_, err := p.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestComplete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(OpenRouterConfig{
		BaseURL: srv.URL,
		APIKey:  "k",
		Model:   "m",
		Timeout: 50 * time.Millisecond,
	})

	_, err := p.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if !errors.Is(err, ErrUpstreamTimeout) {
		t.Fatalf("expected ErrUpstreamTimeout, got %v", err)
	}
}

func TestComplete_TimeoutDuringBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"choices":[`))
		w.(http.Flusher).Flush()
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(OpenRouterConfig{
		BaseURL: srv.URL,
		APIKey:  "k",
		Model:   "m",
		Timeout: 50 * time.Millisecond,
	})

	// deadline fires after the 200 status line, while the body is streaming
	_, err := p.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if !errors.Is(err, ErrUpstreamTimeout) {
		t.Fatalf("expected ErrUpstreamTimeout, got %v", err)
	}
}

func TestComplete_MissingCredentials(t *testing.T) {
	p := NewOpenRouterProvider(OpenRouterConfig{BaseURL: "http://localhost:0", Model: "m"})
	if _, err := p.Complete(context.Background(), nil); err == nil {
		t.Fatal("expected error for missing api key")
	}

	p = NewOpenRouterProvider(OpenRouterConfig{BaseURL: "http://localhost:0", APIKey: "k"})
	if _, err := p.Complete(context.Background(), nil); err == nil {
		t.Fatal("expected error for missing model")
	}
}
