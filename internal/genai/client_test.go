package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"support-assistant/internal/config"
)

func testClient(baseURL string) *Client {
	return NewClient(config.GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-pro",
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
	}, nil, nil)
}

func TestGenerateText_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-pro:generateContent" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Fatalf("expected api key header, got %q", got)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "2+2" {
			t.Fatalf("unexpected request payload: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"4"}]}}]}`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).GenerateText(context.Background(), "2+2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "4" {
		t.Fatalf("expected %q, got %q", "4", got)
	}
}

func TestGenerateText_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GenerateText(context.Background(), "x")
	if err != ErrEmptyCandidates {
		t.Fatalf("expected ErrEmptyCandidates, got %v", err)
	}
}

func TestGenerateText_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).GenerateText(context.Background(), "x"); err == nil {
		t.Fatalf("expected error for non-200")
	}
}

func TestGenerateText_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":`))
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).GenerateText(context.Background(), "x"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestGenerateText_NotConfigured(t *testing.T) {
	c := NewClient(config.GeminiConfig{BaseURL: "http://unused", Model: "m"}, nil, nil)
	if c.Configured() {
		t.Fatalf("expected unconfigured client")
	}
	if _, err := c.GenerateText(context.Background(), "x"); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
