package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"support-assistant/internal/config"
	"support-assistant/internal/metrics"
)

var (
	// ErrNotConfigured means no API key was supplied; generation branches
	// must surface a configuration error, not attempt a call.
	ErrNotConfigured = errors.New("genai: api key not configured")

	// ErrEmptyCandidates means the provider answered 200 with no usable
	// candidate text. Callers must treat it like any other provider failure,
	// never as an empty success.
	ErrEmptyCandidates = errors.New("genai: response contained no candidates")
)

// Client calls the generative-language REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func NewClient(cfg config.GeminiConfig, log *slog.Logger, m *metrics.Metrics) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		logger:     log.With("component", "genai"),
		metrics:    m,
	}
}

// Configured reports whether the client holds an API key.
func (c *Client) Configured() bool { return c.apiKey != "" }

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateText sends a single-prompt completion request and returns the
// first candidate's text.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("genai: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("genai: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordGeneration("error")
		return "", fmt.Errorf("genai: http: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveGenerationLatency(strconv.Itoa(resp.StatusCode), time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordGeneration("error")
		return "", fmt.Errorf("genai: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("generation request failed",
			"status", resp.StatusCode,
			"body", truncate(string(raw), 300),
		)
		c.metrics.RecordGeneration("error")
		return "", fmt.Errorf("genai: unexpected status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		c.metrics.RecordGeneration("error")
		return "", fmt.Errorf("genai: decode response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		c.logger.Error("generation response had no candidates", "body", truncate(string(raw), 300))
		c.metrics.RecordGeneration("empty")
		return "", ErrEmptyCandidates
	}
	c.metrics.RecordGeneration("success")
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
