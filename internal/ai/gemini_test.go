package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestClient(url string) *GeminiClient {
	g := NewGeminiClient("test-key", "test-model")
	g.endpoint = url
	g.limiter = rate.NewLimiter(rate.Inf, 1)
	g.backoffs = []time.Duration{time.Millisecond, time.Millisecond}
	return g
}

func TestGenerateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/test-model:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		body, _ := io.ReadAll(r.Body)
		var req generateRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Contents[0].Parts[0].Text != "summarize week 3" {
			t.Errorf("prompt = %q", req.Contents[0].Parts[0].Text)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Tuần 3: "},{"text":"lớp 5A dẫn đầu."}]}}]}`))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).Generate(context.Background(), "summarize week 3")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "Tuần 3: lớp 5A dẫn đầu." {
		t.Errorf("Generate() = %q", text)
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).Generate(context.Background(), "p")
	if err != nil || text != "ok" {
		t.Fatalf("Generate() = %q, %v", text, err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Generate(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("Generate() error = %v, want 403", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Generate(context.Background(), "p"); err != ErrEmptyResponse {
		t.Errorf("Generate() error = %v, want ErrEmptyResponse", err)
	}
}

func TestUnavailableWithoutKey(t *testing.T) {
	g := NewGeminiClient("", "")
	if g.Available() {
		t.Error("client without key should not be available")
	}
	if g.Name() != "gemini/"+defaultGeminiModel {
		t.Errorf("Name() = %s", g.Name())
	}
	if _, err := g.Generate(context.Background(), "p"); err == nil {
		t.Error("expected error without key")
	}
}
