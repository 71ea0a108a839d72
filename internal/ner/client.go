// Package ner is the optional entity-recognizer collaborator. The engine
// only consumes spans labelled as person entities; absence or failure of
// the recognizer degrades generation to pattern-only strategies.
package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Span is one recognized entity span within a text.
type Span struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Recognizer returns entity spans for a text.
type Recognizer interface {
	Entities(ctx context.Context, text string) ([]Span, error)
}

// Client talks to an entity-recognizer HTTP service (e.g. a spaCy server
// exposing POST /ents).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type entsRequest struct {
	Text string `json:"text"`
}

type entsResponse struct {
	Ents []Span `json:"ents"`
}

// Entities requests entity spans for text.
func (c *Client) Entities(ctx context.Context, text string) ([]Span, error) {
	body, err := json.Marshal(entsRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal ents request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ents", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ner service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("ner status %d: %s", resp.StatusCode, string(respBody))
	}

	var out entsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode ents response: %w", err)
	}
	return out.Ents, nil
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
