// Package ai wraps the text generation API used to write weekly reports.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// TextGenerator turns a prompt into prose
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Available() bool
	Name() string
}

// ErrEmptyResponse is returned when the API answers without any text
var ErrEmptyResponse = errors.New("model returned no text")

const (
	defaultGeminiModel    = "gemini-2.0-flash"
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"
)

// GeminiClient calls the Gemini generateContent REST API
type GeminiClient struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	backoffs []time.Duration
}

// NewGeminiClient creates a client. If model is empty, defaults to gemini-2.0-flash.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultGeminiEndpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(2*time.Second), 1),
		backoffs: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
}

// Available returns true if an API key is configured
func (g *GeminiClient) Available() bool {
	return g.apiKey != ""
}

// Name returns the generator identifier stored with reports
func (g *GeminiClient) Name() string {
	return "gemini/" + g.model
}

// Generate sends one prompt and returns the concatenated text of the first candidate
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !g.Available() {
		return "", fmt.Errorf("gemini API key is not configured")
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:     0.7,
			MaxOutputTokens: 2048,
		},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := g.doWithRetry(ctx, jsonBody)
	if err != nil {
		return "", err
	}

	var resp generateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// doWithRetry retries on 429 and 5xx with backoff, honoring Retry-After
func (g *GeminiClient) doWithRetry(ctx context.Context, jsonBody []byte) ([]byte, error) {
	url := fmt.Sprintf("%s/%s:generateContent", g.endpoint, g.model)
	maxRetries := len(g.backoffs)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", g.apiKey)

		resp, err := g.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			if err := g.sleep(ctx, attempt, 0); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read response: %w", readErr)
			if err := g.sleep(ctx, attempt, 0); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(body))
			var retryAfter time.Duration
			if resp.StatusCode == http.StatusTooManyRequests {
				if seconds, parseErr := strconv.Atoi(resp.Header.Get("Retry-After")); parseErr == nil && seconds > 0 {
					retryAfter = min(time.Duration(seconds)*time.Second, 30*time.Second)
				}
			}
			if err := g.sleep(ctx, attempt, retryAfter); err != nil {
				return nil, err
			}
			continue
		}

		return nil, fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil, fmt.Errorf("gemini API request failed after %d retries: %w", maxRetries, lastErr)
}

func (g *GeminiClient) sleep(ctx context.Context, attempt int, override time.Duration) error {
	if attempt >= len(g.backoffs) {
		return nil
	}
	delay := g.backoffs[attempt]
	if override > 0 {
		delay = override
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}
