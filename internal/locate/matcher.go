package locate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/minhajsf/Plan-it/internal/completion"
)

// NoMatch is the literal token the completion returns when nothing fits
const NoMatch = "invalid"

var (
	// ErrNoCandidates means the pre-filter left nothing to choose from
	ErrNoCandidates = errors.New("no candidate records")
	// ErrNoMatch means the completion rejected every candidate
	ErrNoMatch = errors.New("no matching record")
)

const matcherPrompt = `You pick which of the user's existing items they are referring to.

You will be given the user's request and a list of candidates. Each candidate has an id
and a JSON snapshot of its current fields.

Respond with ONLY the id of the single closest match, exactly as written, with no quotes
and no other text. If none of the candidates is a good match, respond with the single word
invalid.`

// Matcher asks the completion service to pick one candidate id.
// Ties are resolved by the completion service and are not deterministic.
type Matcher struct {
	gateway completion.Gateway
	logger  *zap.Logger
}

// NewMatcher creates a matcher
func NewMatcher(gateway completion.Gateway, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{gateway: gateway, logger: logger}
}

// FindBestMatch returns the chosen provider id, or false when there is no match
func (m *Matcher) FindBestMatch(ctx context.Context, utterance string, candidates []Candidate) (string, bool) {
	id, err := m.Pick(ctx, utterance, candidates)
	if err != nil {
		return "", false
	}
	return id, true
}

// Pick is FindBestMatch with the reason for a miss. Zero candidates never reach the gateway.
func (m *Matcher) Pick(ctx context.Context, utterance string, candidates []Candidate) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}

	resp, err := m.gateway.Ask(ctx, completion.Request{
		System: matcherPrompt,
		User:   matcherInput(utterance, candidates),
	})
	if err != nil {
		return "", fmt.Errorf("failed to match record: %w", err)
	}

	id := cleanID(resp)
	if id == "" || strings.EqualFold(id, NoMatch) {
		return "", ErrNoMatch
	}

	for _, c := range candidates {
		if c.ID == id {
			return id, nil
		}
	}

	m.logger.Warn("matcher returned an id outside the shortlist", zap.String("id", id))
	return "", ErrNoMatch
}

func matcherInput(utterance string, candidates []Candidate) string {
	var b strings.Builder
	b.WriteString("Request: ")
	b.WriteString(utterance)
	b.WriteString("\n\nCandidates:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- id: %s\n  snapshot: %s\n", c.ID, c.Snapshot)
	}
	return b.String()
}

// cleanID strips whitespace and any quoting the completion wrapped around the id
func cleanID(raw string) string {
	id := strings.TrimSpace(raw)
	if line, _, ok := strings.Cut(id, "\n"); ok {
		id = strings.TrimSpace(line)
	}
	id = strings.TrimPrefix(id, "id:")
	return strings.Trim(strings.TrimSpace(id), "\"'`")
}
