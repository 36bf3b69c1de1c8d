package completion

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiGateway talks to the Gemini API and supports constrained JSON output
type GeminiGateway struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiGateway creates a new Gemini-backed gateway
func NewGeminiGateway(ctx context.Context, apiKey, model string, temperature float64) (*GeminiGateway, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if temperature <= 0 {
		temperature = 0.1
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGateway{
		client:      client,
		model:       model,
		temperature: float32(temperature),
	}, nil
}

// Ask sends one single-turn request
func (g *GeminiGateway) Ask(ctx context.Context, req Request) (string, error) {
	temp := g.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.User), cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from API")
	}
	return text, nil
}
