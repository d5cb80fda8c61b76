// Package gemini is a minimal client for the Gemini generateContent REST
// endpoint. Requests and responses are plain JSON structs; only text
// prompts and text replies are supported.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/axevisa/visa-backend/internal/config"
)

// ErrEmptyResponse is returned when the model replies with no candidates
var ErrEmptyResponse = errors.New("model returned no candidates")

// Client calls the Gemini API over HTTP
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Gemini client from configuration
func NewClient(cfg config.GeminiConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Request is the generateContent request body
type Request struct {
	Contents []Content `json:"contents"`
}

// Content is one conversation turn
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is one piece of a turn; only text is used here
type Part struct {
	Text string `json:"text"`
}

// Response is the generateContent response body
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one model reply
type Candidate struct {
	Content Content `json:"content"`
}

// GenerateContent sends a single text prompt and returns the first text reply
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	reqBody := Request{
		Contents: []Content{
			{Parts: []Part{{Text: prompt}}},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call model: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed Response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
