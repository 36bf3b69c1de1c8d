package orchestrator

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/minhajsf/Plan-it/internal/completion"
	"github.com/minhajsf/Plan-it/internal/database"
	"github.com/minhajsf/Plan-it/internal/intent"
	"github.com/minhajsf/Plan-it/internal/locate"
	"github.com/minhajsf/Plan-it/internal/payload"
	"github.com/minhajsf/Plan-it/internal/provider"
	"github.com/minhajsf/Plan-it/internal/service"
)

// turn carries the state of one utterance through the pipeline
type turn struct {
	o      *Orchestrator
	userID int64
	text   string
	stage  Stage
	intent intent.Intent
}

func (t *turn) kind() service.Service {
	return t.intent.Service
}

func (t *turn) transition(next Stage) {
	t.o.logger.Debug("stage transition",
		zap.Int64("user_id", t.userID),
		zap.String("from", string(t.stage)),
		zap.String("stage", string(next)),
		zap.String("service", string(t.intent.Service)),
		zap.String("action", string(t.intent.Action)))
	t.stage = next
}

func (t *turn) reply(outcome Outcome, message string, record *database.Record) Reply {
	return Reply{
		Outcome: outcome,
		Message: message,
		Stage:   t.stage,
		Service: t.intent.Service,
		Action:  t.intent.Action,
		Record:  record,
	}
}

func (t *turn) fail(outcome Outcome, message string, err error) Reply {
	fields := []zap.Field{
		zap.Int64("user_id", t.userID),
		zap.String("stage", string(t.stage)),
		zap.String("outcome", string(outcome)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
		t.o.logger.Warn("turn failed", fields...)
	} else {
		t.o.logger.Info("turn ended without action", fields...)
	}
	return t.reply(outcome, message, nil)
}

// create: synthesize, complete, normalize, insert remotely, then mirror locally
func (t *turn) create(ctx context.Context) Reply {
	tz := t.o.timezoneFor(t.userID)

	p, failed := t.buildPayload(ctx, nil, tz)
	if failed != nil {
		return *failed
	}

	prov, failed := t.provider(ctx)
	if failed != nil {
		return *failed
	}

	t.transition(StageApplying)
	callCtx, cancel := t.o.bounded(ctx)
	res, err := prov.Insert(callCtx, t.kind(), p)
	cancel()
	if err != nil {
		return t.fail(OutcomeProviderError, msgProviderError(t.kind(), service.ActionCreate, err), err)
	}

	t.transition(StagePersisting)
	record := &database.Record{
		UserID:     t.userID,
		Kind:       t.kind(),
		ProviderID: res.ID,
		Link:       res.Link,
	}
	applyPayload(record, p, tz)
	if _, err := t.o.store.CreateRecord(record); err != nil {
		return t.fail(OutcomeStorageError, msgStorageError(t.kind(), service.ActionCreate, err), err)
	}

	t.o.logger.Info("record created",
		zap.Int64("user_id", t.userID),
		zap.String("kind", string(t.kind())),
		zap.String("provider_id", record.ProviderID))
	return t.reply(OutcomeOK, confirmation(service.ActionCreate, record), record)
}

// update: locate the target, synthesize with its snapshot, patch remotely, then overwrite the mirror
func (t *turn) update(ctx context.Context) Reply {
	target, failed := t.locate(ctx)
	if failed != nil {
		return *failed
	}

	tz := t.o.timezoneFor(t.userID)
	p, failed := t.buildPayload(ctx, target, tz)
	if failed != nil {
		return *failed
	}

	prov, failed := t.provider(ctx)
	if failed != nil {
		return *failed
	}

	t.transition(StageApplying)
	callCtx, cancel := t.o.bounded(ctx)
	res, err := prov.Update(callCtx, t.kind(), target.ProviderID, p)
	cancel()
	if err != nil {
		return t.fail(OutcomeProviderError, msgProviderError(t.kind(), service.ActionUpdate, err), err)
	}

	t.transition(StagePersisting)
	updated := *target
	if res.ID != "" {
		updated.ProviderID = res.ID
	}
	if res.Link != "" {
		updated.Link = res.Link
	}
	applyPayload(&updated, p, tz)
	if err := t.o.store.UpdateRecord(&updated); err != nil {
		return t.fail(OutcomeStorageError, msgStorageError(t.kind(), service.ActionUpdate, err), err)
	}

	t.o.logger.Info("record updated",
		zap.Int64("user_id", t.userID),
		zap.String("kind", string(t.kind())),
		zap.String("previous_provider_id", target.ProviderID),
		zap.String("provider_id", updated.ProviderID))
	return t.reply(OutcomeOK, confirmation(service.ActionUpdate, &updated), &updated)
}

// remove: locate the target, optionally ask for confirmation, delete remotely then locally
func (t *turn) remove(ctx context.Context) Reply {
	target, failed := t.locate(ctx)
	if failed != nil {
		return *failed
	}

	if t.o.opts.ConfirmRemovals {
		t.o.pending.put(t.userID, pendingRemoval{
			intent:  t.intent,
			record:  *target,
			expires: t.o.opts.Clock().Add(t.o.opts.ConfirmationTTL),
		})
		t.transition(StageAwaitingConfirmation)
		return t.reply(OutcomeAwaitingConfirmation, confirmRemovalPrompt(target), target)
	}

	return t.applyRemove(ctx, target)
}

func (t *turn) applyRemove(ctx context.Context, target *database.Record) Reply {
	prov, failed := t.provider(ctx)
	if failed != nil {
		return *failed
	}

	t.transition(StageApplying)
	callCtx, cancel := t.o.bounded(ctx)
	err := prov.Delete(callCtx, t.kind(), target.ProviderID)
	cancel()
	if err != nil {
		return t.fail(OutcomeProviderError, msgProviderError(t.kind(), service.ActionRemove, err), err)
	}

	t.transition(StagePersisting)
	if err := t.o.store.DeleteRecord(t.userID, target.ID); err != nil {
		return t.fail(OutcomeStorageError, msgStorageError(t.kind(), service.ActionRemove, err), err)
	}

	t.o.logger.Info("record removed",
		zap.Int64("user_id", t.userID),
		zap.String("kind", string(t.kind())),
		zap.String("provider_id", target.ProviderID))
	return t.reply(OutcomeOK, confirmation(service.ActionRemove, target), target)
}

// send: locate the draft, send it remotely, then drop it from the mirror
func (t *turn) send(ctx context.Context) Reply {
	target, failed := t.locate(ctx)
	if failed != nil {
		return *failed
	}

	prov, failed := t.provider(ctx)
	if failed != nil {
		return *failed
	}

	t.transition(StageApplying)
	callCtx, cancel := t.o.bounded(ctx)
	err := prov.Send(callCtx, target.ProviderID)
	cancel()
	if err != nil {
		return t.fail(OutcomeProviderError, msgProviderError(t.kind(), service.ActionSend, err), err)
	}

	t.transition(StagePersisting)
	if err := t.o.store.DeleteRecord(t.userID, target.ID); err != nil {
		return t.fail(OutcomeStorageError, msgStorageError(t.kind(), service.ActionSend, err), err)
	}

	t.o.logger.Info("draft sent",
		zap.Int64("user_id", t.userID),
		zap.String("provider_id", target.ProviderID))
	return t.reply(OutcomeOK, confirmation(service.ActionSend, target), target)
}

// locate resolves the single record an update, remove or send refers to.
// An empty shortlist ends the turn before the matcher is consulted.
func (t *turn) locate(ctx context.Context) (*database.Record, *Reply) {
	t.transition(StageLocating)

	callCtx, cancel := t.o.bounded(ctx)
	keywords := t.o.extractor.Extract(callCtx, t.text)
	cancel()

	records, err := t.o.store.SearchRecords(t.userID, t.kind(), keywords)
	if err != nil {
		r := t.fail(OutcomeStorageError, msgLookupFailed(t.kind()), err)
		return nil, &r
	}

	shortlist := locate.Shortlist(records, keywords)
	if len(shortlist) == 0 {
		r := t.fail(OutcomeNotFound, msgNotFound(t.kind()), nil)
		return nil, &r
	}

	callCtx, cancel = t.o.bounded(ctx)
	id, err := t.o.matcher.Pick(callCtx, t.text, locate.Candidates(shortlist))
	cancel()
	if err != nil {
		var cause error
		if !errors.Is(err, locate.ErrNoMatch) {
			cause = err
		}
		r := t.fail(OutcomeNotFound, msgNotFound(t.kind()), cause)
		return nil, &r
	}

	for i := range shortlist {
		if shortlist[i].ProviderID == id {
			return &shortlist[i], nil
		}
	}
	r := t.fail(OutcomeNotFound, msgNotFound(t.kind()), nil)
	return nil, &r
}

// buildPayload runs the synthesize, complete and normalize stages
func (t *turn) buildPayload(ctx context.Context, snapshot *database.Record, tz string) (payload.Payload, *Reply) {
	t.transition(StageSynthesizing)
	instr := t.o.synth.BuildFor(t.intent, snapshot, tz)

	t.transition(StageCompleting)
	callCtx, cancel := t.o.bounded(ctx)
	raw, err := t.o.gateway.Ask(callCtx, completion.Request{
		System: instr,
		User:   t.text,
		JSON:   true,
	})
	cancel()
	if err != nil {
		r := t.fail(OutcomeMalformedPayload, msgCompletionFailed, err)
		return nil, &r
	}

	t.transition(StageNormalizing)
	p, err := payload.Normalize(raw)
	if err != nil {
		r := t.fail(OutcomeMalformedPayload, msgMalformedPayload, err)
		return nil, &r
	}

	if err := p.Check(); err != nil {
		r := t.fail(OutcomeInsufficientInfo, msgInsufficientInfo(t.kind()), nil)
		return nil, &r
	}
	if snapshot != nil {
		if base, err := payload.Decode(snapshot.RawPayload); err == nil {
			p.Underlay(base)
		} else {
			t.o.logger.Warn("stored payload is unreadable, updating without it",
				zap.Int64("record_id", snapshot.ID), zap.Error(err))
		}
	}
	p.FillDefaults(t.kind(), tz)
	if err := p.Validate(t.kind()); err != nil {
		r := t.fail(OutcomeInsufficientInfo, msgInsufficientInfo(t.kind()), err)
		return nil, &r
	}
	if _, _, err := p.Times(tz); err != nil {
		r := t.fail(OutcomeMalformedPayload, msgMalformedPayload, err)
		return nil, &r
	}
	return p, nil
}

func (t *turn) provider(ctx context.Context) (provider.Provider, *Reply) {
	prov, err := t.o.providers.ProviderFor(ctx, t.userID)
	if err != nil {
		r := t.fail(OutcomeProviderError, msgProviderUnavailable(err), err)
		return nil, &r
	}
	return prov, nil
}

// applyPayload copies the payload's fields onto the mirror record
func applyPayload(r *database.Record, p payload.Payload, tz string) {
	r.Title = p.Title(r.Kind)
	r.Body = p.Body(r.Kind)
	r.Participants = p.Participants(r.Kind)
	r.RawPayload = p.JSON()
	if start, end, err := p.Times(tz); err == nil {
		r.StartTime = start
		r.EndTime = end
	}
}
