package completion

import (
	"context"
	"fmt"
)

const (
	BackendClaude = "claude"
	BackendGemini = "gemini"
)

// Options selects and configures a backend
type Options struct {
	Backend      string
	ClaudeAPIKey string
	ClaudeModel  string
	GeminiAPIKey string
	GeminiModel  string
	Temperature  float64
}

// New builds the gateway named by opts.Backend
func New(ctx context.Context, opts Options) (Gateway, error) {
	switch opts.Backend {
	case "", BackendClaude:
		if opts.ClaudeAPIKey == "" {
			return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY not set", ErrNotConfigured)
		}
		return NewClaudeGateway(opts.ClaudeAPIKey, opts.ClaudeModel, opts.Temperature), nil
	case BackendGemini:
		return NewGeminiGateway(ctx, opts.GeminiAPIKey, opts.GeminiModel, opts.Temperature)
	default:
		return nil, fmt.Errorf("unknown completion backend: %s", opts.Backend)
	}
}
