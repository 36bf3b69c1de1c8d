package intent

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/minhajsf/Plan-it/internal/completion"
	"github.com/minhajsf/Plan-it/internal/payload"
	"github.com/minhajsf/Plan-it/internal/service"
)

// Intent is the classified (service, action) pair for one utterance
type Intent struct {
	Service service.Service
	Action  service.Action
	RawText string
}

// Unknown is the sentinel returned whenever classification fails
func Unknown(raw string) Intent {
	return Intent{Service: service.ServiceUnknown, Action: service.ActionUnknown, RawText: raw}
}

// IsUnknown reports whether the intent is outside the supported set
func (i Intent) IsUnknown() bool {
	return !service.IsValid(i.Service, i.Action)
}

type classification struct {
	EventType string `json:"event_type"`
	Mode      string `json:"mode"`
}

// Classifier maps free text to an Intent using the completion gateway
type Classifier struct {
	gateway completion.Gateway
	logger  *zap.Logger
}

// NewClassifier creates a classifier
func NewClassifier(gateway completion.Gateway, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{gateway: gateway, logger: logger}
}

// Classify never returns an error: any failure yields Unknown
func (c *Classifier) Classify(ctx context.Context, utterance string) Intent {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return Unknown(utterance)
	}

	resp, err := c.gateway.Ask(ctx, completion.Request{
		System: SystemPrompt(),
		User:   text,
		JSON:   true,
	})
	if err != nil {
		c.logger.Warn("classification request failed", zap.Error(err))
		return Unknown(utterance)
	}

	span, ok := payload.ExtractObject(resp)
	if !ok {
		c.logger.Warn("classification response has no object", zap.String("response", resp))
		return Unknown(utterance)
	}

	var out classification
	if err := json.Unmarshal([]byte(payload.NormalizeLiterals(span)), &out); err != nil {
		c.logger.Warn("classification response is not valid JSON", zap.Error(err), zap.String("response", resp))
		return Unknown(utterance)
	}

	in := Intent{
		Service: service.ParseService(out.EventType),
		Action:  service.ParseAction(out.Mode),
		RawText: utterance,
	}
	if in.IsUnknown() {
		return Unknown(utterance)
	}

	c.logger.Debug("classified utterance",
		zap.String("service", string(in.Service)),
		zap.String("action", string(in.Action)))
	return in
}
