// Package llm is the optional completion-service collaborator. The decision
// resolver sends it a closed-candidate prompt and re-validates its answer;
// any failure here is equivalent to the service being unavailable.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gbarros/docfields/internal/config"
)

// Completer returns a single completion text for a system+user prompt pair.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Client calls an OpenAI-compatible chat/completions endpoint (llama.cpp
// server, vLLM, or a hosted API). Sampling parameters are fixed from config
// for reproducibility; a single call, no retry.
type Client struct {
	cfg        config.Config
	log        *slog.Logger
	httpClient *http.Client

	Stats *Stats
}

func NewClient(cfg config.Config, log *slog.Logger) *Client {
	return &Client{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.LLMTimeout,
		},
		Stats: NewStats(time.Hour),
	}
}

// Model returns the configured model reference.
func (c *Client) Model() string {
	return c.cfg.LLMModel
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	TopK        int           `json:"top_k,omitempty"`
	Seed        int           `json:"seed,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one chat completion request and returns the raw text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.complete.start",
		"req_id", rid,
		"model", c.cfg.LLMModel,
		"temperature", c.cfg.LLMTemperature,
		"top_p", c.cfg.LLMTopP,
		"top_k", c.cfg.LLMTopK,
		"max_tokens", c.cfg.LLMMaxTokens,
	)

	reqBody := chatRequest{
		Model: c.cfg.LLMModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   c.cfg.LLMMaxTokens,
		Temperature: c.cfg.LLMTemperature,
		TopP:        c.cfg.LLMTopP,
		TopK:        c.cfg.LLMTopK,
		Seed:        c.cfg.LLMSeed,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.LLMBaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.LLMAPIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.LLMAPIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Warn("llm.complete.http_error", "req_id", rid, "error", err)
		return "", fmt.Errorf("completion service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("llm.complete.bad_status", "req_id", rid, "status", resp.StatusCode)
		return "", fmt.Errorf("completion status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("completion error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from completion service")
	}

	elapsed := time.Since(start).Milliseconds()
	c.Stats.Record(elapsed)
	c.log.Info("llm.complete.ok", "req_id", rid, "elapsed_ms", elapsed)

	return stripCodeBlock(apiResp.Choices[0].Message.Content), nil
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
