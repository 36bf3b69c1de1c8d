package locate

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/minhajsf/Plan-it/internal/completion"
)

const keywordPrompt = `You extract search terms from a request to find an existing calendar event,
meeting or email draft.

Return the most specific words that would appear in the title or description of
the item the user is talking about: names, places, topics. Leave out verbs like
"delete", "move", "send" and generic words like "meeting", "event", "email",
"my", "the".

Respond with the terms as a single comma-separated line and nothing else.
Example: brooke, interview, friday`

// KeywordExtractor turns an utterance into a best-effort bag of search terms
type KeywordExtractor struct {
	gateway completion.Gateway
	logger  *zap.Logger
}

// NewKeywordExtractor creates an extractor
func NewKeywordExtractor(gateway completion.Gateway, logger *zap.Logger) *KeywordExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeywordExtractor{gateway: gateway, logger: logger}
}

// Extract returns the comma-separated terms from the completion.
// A gateway failure yields an empty set, never the whole record set.
func (k *KeywordExtractor) Extract(ctx context.Context, utterance string) []string {
	resp, err := k.gateway.Ask(ctx, completion.Request{
		System: keywordPrompt,
		User:   utterance,
	})
	if err != nil {
		k.logger.Warn("keyword extraction failed", zap.Error(err))
		return nil
	}
	return SplitKeywords(resp)
}

// SplitKeywords splits on commas and trims whitespace and stray quoting
func SplitKeywords(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		kw := strings.Trim(strings.TrimSpace(part), "\"'`.")
		kw = strings.TrimSpace(kw)
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
