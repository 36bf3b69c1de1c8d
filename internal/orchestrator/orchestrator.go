package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/minhajsf/Plan-it/internal/completion"
	"github.com/minhajsf/Plan-it/internal/database"
	"github.com/minhajsf/Plan-it/internal/instruction"
	"github.com/minhajsf/Plan-it/internal/intent"
	"github.com/minhajsf/Plan-it/internal/locate"
	"github.com/minhajsf/Plan-it/internal/provider"
	"github.com/minhajsf/Plan-it/internal/service"
	"github.com/minhajsf/Plan-it/internal/timeutil"
)

// Stage is one step of the per-utterance pipeline
type Stage string

const (
	StageIdle                 Stage = "idle"
	StageClassifying          Stage = "classifying"
	StageLocating             Stage = "locating"
	StageAwaitingConfirmation Stage = "awaiting_confirmation"
	StageSynthesizing         Stage = "synthesizing"
	StageCompleting           Stage = "completing"
	StageNormalizing          Stage = "normalizing"
	StageApplying             Stage = "applying"
	StagePersisting           Stage = "persisting"
)

// Outcome classifies how a turn ended
type Outcome string

const (
	OutcomeOK                   Outcome = "ok"
	OutcomeUnknownIntent        Outcome = "unknown_intent"
	OutcomeInsufficientInfo     Outcome = "insufficient_info"
	OutcomeNotFound             Outcome = "not_found"
	OutcomeMalformedPayload     Outcome = "malformed_payload"
	OutcomeProviderError        Outcome = "provider_error"
	OutcomeStorageError         Outcome = "storage_error"
	OutcomeCancelled            Outcome = "cancelled"
	OutcomeAwaitingConfirmation Outcome = "awaiting_confirmation"
)

// Utterance is one free-text turn from one user
type Utterance struct {
	UserID int64
	Text   string
}

// Reply is the single user-facing result of a turn
type Reply struct {
	Outcome Outcome          `json:"outcome"`
	Message string           `json:"message"`
	Stage   Stage            `json:"stage"`
	Service service.Service  `json:"service,omitempty"`
	Action  service.Action   `json:"action,omitempty"`
	Record  *database.Record `json:"record,omitempty"`
}

// Store is the local record mirror
type Store interface {
	CreateRecord(r *database.Record) (*database.Record, error)
	SearchRecords(userID int64, kind service.Service, keywords []string) ([]database.Record, error)
	UpdateRecord(r *database.Record) error
	DeleteRecord(userID, id int64) error
	GetUserTimezone(userID int64) (string, error)
}

// Providers hands out the provider bound to a user's credentials
type Providers interface {
	ProviderFor(ctx context.Context, userID int64) (provider.Provider, error)
}

// StaticProviders serves one provider to every user
type StaticProviders struct {
	Provider provider.Provider
}

func (s StaticProviders) ProviderFor(ctx context.Context, userID int64) (provider.Provider, error) {
	return s.Provider, nil
}

// Options tunes the orchestrator
type Options struct {
	// CallTimeout bounds every external call; zero disables the bound
	CallTimeout time.Duration
	// ConfirmRemovals asks y/n before a remove is applied
	ConfirmRemovals bool
	// ConfirmationTTL discards a pending removal the user never answered
	ConfirmationTTL time.Duration
	// DefaultTimezone applies to users with no stored timezone
	DefaultTimezone string
	Clock           timeutil.Clock
}

// Orchestrator drives one utterance through classify, locate, synthesize,
// complete, normalize, apply and persist
type Orchestrator struct {
	gateway    completion.Gateway
	classifier *intent.Classifier
	extractor  *locate.KeywordExtractor
	matcher    *locate.Matcher
	synth      *instruction.Synthesizer
	store      Store
	providers  Providers
	opts       Options
	logger     *zap.Logger

	locks   *userLocks
	pending *pendingRemovals
}

// New wires an orchestrator
func New(gateway completion.Gateway, store Store, providers Providers, opts Options, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = timeutil.SystemClock
	}
	if opts.DefaultTimezone == "" {
		opts.DefaultTimezone = timeutil.LocalZoneName()
	}
	if opts.ConfirmationTTL <= 0 {
		opts.ConfirmationTTL = 5 * time.Minute
	}

	return &Orchestrator{
		gateway:    gateway,
		classifier: intent.NewClassifier(gateway, logger),
		extractor:  locate.NewKeywordExtractor(gateway, logger),
		matcher:    locate.NewMatcher(gateway, logger),
		synth:      instruction.NewSynthesizer(opts.Clock, opts.DefaultTimezone),
		store:      store,
		providers:  providers,
		opts:       opts,
		logger:     logger,
		locks:      newUserLocks(),
		pending:    newPendingRemovals(),
	}
}

type dispatchKey struct {
	service service.Service
	action  service.Action
}

var dispatch = map[dispatchKey]func(*turn, context.Context) Reply{
	{service.ServiceCalendar, service.ActionCreate}: (*turn).create,
	{service.ServiceCalendar, service.ActionUpdate}: (*turn).update,
	{service.ServiceCalendar, service.ActionRemove}: (*turn).remove,
	{service.ServiceMeeting, service.ActionCreate}:  (*turn).create,
	{service.ServiceMeeting, service.ActionUpdate}:  (*turn).update,
	{service.ServiceMeeting, service.ActionRemove}:  (*turn).remove,
	{service.ServiceMail, service.ActionCreate}:     (*turn).create,
	{service.ServiceMail, service.ActionUpdate}:     (*turn).update,
	{service.ServiceMail, service.ActionSend}:       (*turn).send,
}

// Handle runs one turn to completion. Turns of the same user never overlap.
// It never returns an error: every failure becomes exactly one Reply.
func (o *Orchestrator) Handle(ctx context.Context, u Utterance) Reply {
	unlock := o.locks.lock(u.UserID)
	defer unlock()

	t := &turn{o: o, userID: u.UserID, text: u.Text, stage: StageIdle}

	if p, ok := o.pending.take(u.UserID, o.opts.Clock()); ok {
		reply := t.confirm(ctx, p)
		t.transition(StageIdle)
		return reply
	}

	t.transition(StageClassifying)
	callCtx, cancel := o.bounded(ctx)
	t.intent = o.classifier.Classify(callCtx, u.Text)
	cancel()

	handler, ok := dispatch[dispatchKey{t.intent.Service, t.intent.Action}]
	if !ok {
		reply := t.fail(OutcomeUnknownIntent, msgUnknownIntent, nil)
		t.transition(StageIdle)
		return reply
	}

	reply := handler(t, ctx)
	t.transition(StageIdle)
	return reply
}

// bounded applies the per-call timeout
func (o *Orchestrator) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.opts.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.opts.CallTimeout)
}

func (o *Orchestrator) timezoneFor(userID int64) string {
	tz, err := o.store.GetUserTimezone(userID)
	if err != nil || tz == "" {
		return o.opts.DefaultTimezone
	}
	return tz
}

// HasPendingConfirmation reports whether the user's next turn answers a y/n question
func (o *Orchestrator) HasPendingConfirmation(userID int64) bool {
	return o.pending.has(userID, o.opts.Clock())
}
