package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultClaudeURL   = "https://api.anthropic.com/v1/messages"
	defaultClaudeModel = "claude-sonnet-4-20250514"
	defaultMaxTokens   = 1024
	anthropicVersion   = "2023-06-01"
)

// ErrInsufficientCredits is returned when the Anthropic account has no credit left
var ErrInsufficientCredits = errors.New("anthropic credit balance too low")

// ClaudeGateway talks to the Anthropic Messages API
type ClaudeGateway struct {
	apiKey      string
	model       string
	apiURL      string
	httpClient  *http.Client
	temperature float64
}

// NewClaudeGateway creates a new Anthropic-backed gateway
func NewClaudeGateway(apiKey, model string, temperature float64) *ClaudeGateway {
	if model == "" {
		model = defaultClaudeModel
	}
	if temperature <= 0 {
		temperature = 0.1
	}

	return &ClaudeGateway{
		apiKey:      apiKey,
		model:       model,
		apiURL:      defaultClaudeURL,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID      string `json:"id"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type anthropicErrorBody struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

// Ask sends the system instruction and user text and returns the first text block.
// Claude has no JSON mode on this endpoint, so req.JSON only adds a reminder to the system prompt.
func (c *ClaudeGateway) Ask(ctx context.Context, req Request) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	system := req.System
	if req.JSON {
		system += "\n\nRespond with a single JSON object and nothing else."
	}

	body := anthropicRequest{
		Model:       c.model,
		MaxTokens:   defaultMaxTokens,
		Temperature: c.temperature,
		System:      system,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.User},
		},
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", formatAPIError(resp.StatusCode, respBody)
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("API error: %s - %s", apiResp.Error.Type, apiResp.Error.Message)
	}

	for _, block := range apiResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("empty response from API")
}

// IsConfigured returns true if the gateway has an API key
func (c *ClaudeGateway) IsConfigured() bool {
	return c.apiKey != ""
}

// formatAPIError turns a non-200 Anthropic response into a readable error
func formatAPIError(status int, body []byte) error {
	var parsed anthropicErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Error.Type == "" {
		return fmt.Errorf("API error (status %d): %s", status, string(body))
	}

	suffix := ""
	if parsed.RequestID != "" {
		suffix = fmt.Sprintf(" (request_id=%s)", parsed.RequestID)
	}

	if strings.Contains(strings.ToLower(parsed.Error.Message), "credit balance is too low") {
		return fmt.Errorf("%w: top up at https://console.anthropic.com/settings/plans%s", ErrInsufficientCredits, suffix)
	}

	return fmt.Errorf("API error (status %d): %s: %s%s", status, parsed.Error.Type, parsed.Error.Message, suffix)
}
