package analyzer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"scribed/internal/types"
)

func testClient(serverURL string) *GeminiClient {
	cfg := DefaultGeminiConfig("test-key")
	cfg.BaseURL = serverURL
	cfg.Timeout = 5 * time.Second
	return NewGeminiClient(cfg, zap.NewNop())
}

func TestGeminiClient_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.URL.RawQuery, "key=test-key") {
			t.Error("Expected API key in query string")
		}
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash") {
			t.Errorf("Expected model in path, got %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [
				{"content": {"parts": [{"text": "{\"summary\":\"ok\"}"}], "role": "model"}}
			]
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	resp, err := client.Generate(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp != `{"summary":"ok"}` {
		t.Errorf("unexpected response: %q", resp)
	}
}

func TestGeminiClient_Generate_RetriesOn429(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"late"}],"role":"model"}}]}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	resp, err := client.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp != "late" {
		t.Errorf("expected 'late', got %q", resp)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestGeminiClient_Generate_ClientErrorIsFatal(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"bad request"}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Generate(context.Background(), "p")
	if !errors.Is(err, types.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("4xx should not be retried, got %d attempts", attempts)
	}
}

func TestGeminiClient_Generate_APIErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"code":500,"message":"model overloaded","status":"UNAVAILABLE"}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Generate(context.Background(), "p")
	if !errors.Is(err, types.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("expected API message in error, got %v", err)
	}
}

func TestGeminiClient_Generate_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Generate(context.Background(), "p")
	if !errors.Is(err, types.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestGeminiClient_Generate_MissingKey(t *testing.T) {
	cfg := DefaultGeminiConfig("")
	client := NewGeminiClient(cfg, zap.NewNop())
	_, err := client.Generate(context.Background(), "p")
	if !errors.Is(err, types.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}
