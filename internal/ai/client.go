package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient talks to a simple text-completion endpoint. The engine only
// needs request/response plumbing here; resilience lives in the caller's
// fallback policy.
type HTTPClient struct {
	url    string
	model  string
	client *http.Client
}

// NewHTTPClient creates an inference client for the given endpoint
func NewHTTPClient(url, model string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

type completionRequest struct {
	Model        string `json:"model,omitempty"`
	SystemPrompt string `json:"system_prompt"`
	Prompt       string `json:"prompt"`
}

type completionResponse struct {
	Text string `json:"text"`
}

// Complete sends one completion request and returns the raw reply text
func (c *HTTPClient) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:        c.model,
		SystemPrompt: systemPrompt,
		Prompt:       prompt,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference backend returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed completionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return parsed.Text, nil
}
