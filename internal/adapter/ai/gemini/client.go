// Package gemini implements the generative-model client against the Gemini
// generateContent REST API.
package gemini

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/itnext-dev/visa-pathway/internal/adapter/ai/tokencount"
	"github.com/itnext-dev/visa-pathway/internal/adapter/observability"
	"github.com/itnext-dev/visa-pathway/internal/config"
	"github.com/itnext-dev/visa-pathway/internal/domain"
)

// Client implements domain.ModelClient. One outbound call per invocation,
// at-most-once: no retries, no caching, no rate limiting at this layer.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs a Gemini client with the configured timeout and an
// instrumented transport.
func New(cfg config.Config) *Client {
	return &Client{
		cfg: cfg,
		hc: &http.Client{
			Timeout:   cfg.GeminiTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string         `json:"responseMimeType"`
	MaxOutputTokens  int            `json:"maxOutputTokens,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateJSON sends the prompt with the declared assessment output schema and
// returns the raw text of the first candidate.
func (c *Client) GenerateJSON(ctx domain.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c.cfg.GeminiAPIKey == "" {
		return "", fmt.Errorf("%w: GEMINI_API_KEY missing", domain.ErrInvalidArgument)
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: userPrompt}}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			MaxOutputTokens:  maxTokens,
			ResponseSchema:   responseSchema(),
		},
	}
	if systemPrompt != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: systemPrompt}}}
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("op=gemini.marshal: %w", err)
	}

	if n, err := tokencount.CountPromptTokens(systemPrompt, userPrompt); err == nil {
		slog.Debug("prompt token budget", slog.Int("prompt_tokens", n), slog.String("model", c.cfg.GeminiModel))
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.GeminiBaseURL, c.cfg.GeminiModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("op=gemini.request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.GeminiAPIKey)

	start := time.Now()
	resp, err := c.hc.Do(req)
	observability.ObserveAIRequest("gemini", "generate", time.Since(start))
	if err != nil {
		return "", fmt.Errorf("%w: gemini call: %v", domain.ErrUpstreamFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("%w: gemini read: %v", domain.ErrUpstreamFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		slog.Error("gemini returned non-200",
			slog.Int("status", resp.StatusCode),
			slog.String("body", snippet(data, 512)))
		return "", fmt.Errorf("%w: gemini status %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}

	var gr generateResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return "", fmt.Errorf("%w: gemini decode: %v", domain.ErrUpstreamFailure, err)
	}
	if gr.Error != nil {
		return "", fmt.Errorf("%w: gemini: %s", domain.ErrUpstreamFailure, gr.Error.Message)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", domain.ErrUpstreamFailure)
	}

	text := gr.Candidates[0].Content.Parts[0].Text
	slog.Debug("gemini response received", slog.Int("chars", len(text)))
	return text, nil
}

func snippet(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
