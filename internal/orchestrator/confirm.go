package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/minhajsf/Plan-it/internal/database"
	"github.com/minhajsf/Plan-it/internal/intent"
)

// pendingRemoval is a located remove target waiting for a y/n answer
type pendingRemoval struct {
	intent  intent.Intent
	record  database.Record
	expires time.Time
}

type pendingRemovals struct {
	mu     sync.Mutex
	byUser map[int64]pendingRemoval
}

func newPendingRemovals() *pendingRemovals {
	return &pendingRemovals{byUser: make(map[int64]pendingRemoval)}
}

func (p *pendingRemovals) put(userID int64, r pendingRemoval) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byUser[userID] = r
}

// take removes and returns the user's pending removal if it has not expired
func (p *pendingRemovals) take(userID int64, now time.Time) (pendingRemoval, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.byUser[userID]
	if !ok {
		return pendingRemoval{}, false
	}
	delete(p.byUser, userID)
	if now.After(r.expires) {
		return pendingRemoval{}, false
	}
	return r, true
}

func (p *pendingRemovals) has(userID int64, now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.byUser[userID]
	return ok && !now.After(r.expires)
}

// confirm answers a pending removal. Anything other than y/yes or n/no
// cancels it; the text is never classified as a new request.
func (t *turn) confirm(ctx context.Context, p pendingRemoval) Reply {
	t.intent = p.intent
	t.stage = StageAwaitingConfirmation

	switch strings.ToLower(strings.TrimSpace(t.text)) {
	case "y", "yes":
		return t.applyRemove(ctx, &p.record)
	case "n", "no":
		return t.fail(OutcomeCancelled, msgRemovalCancelled(t.kind()), nil)
	default:
		return t.fail(OutcomeCancelled, msgUnsupportedResponse, nil)
	}
}
