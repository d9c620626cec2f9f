// Package wargame implements the turn-resolution engine: order intake
// and validation, and the phase-by-phase resolvers an orchestrator runs
// once per guild per turn advance.
package wargame

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/example/wargame/internal/logger"
	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store"
	"github.com/example/wargame/internal/turnlock"
)

// Engine wraps a tenant-scoped Store and exposes the three-operation
// Turn API (§6): SubmitOrder, CancelOrder, AdvanceTurn.
type Engine struct {
	store store.Store
	locks *turnlock.Locker
	log   zerolog.Logger
}

// NewEngine builds an Engine over store s. locker may be nil, in which
// case AdvanceTurn does not take a distributed lock (single-process use,
// e.g. the memory-backed CLI driver).
func NewEngine(s store.Store, locker *turnlock.Locker) *Engine {
	return &Engine{store: s, locks: locker, log: logger.Get()}
}

// wrapStoreErr classifies a Store-layer error into the engine's error
// taxonomy (§7): a NotFoundError/ConflictError becomes a ValidationError
// since it reflects bad caller input, a TransientError is retried by the
// orchestrator, anything else is Fatal.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	var nf *store.NotFoundError
	if errors.As(err, &nf) {
		return &ValidationError{Reason: nf.Error()}
	}
	var cf *store.ConflictError
	if errors.As(err, &cf) {
		return &ValidationError{Reason: cf.Error()}
	}
	var te *store.TransientError
	if errors.As(err, &te) {
		return &Transient{Err: err}
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return err
	}
	var cErr *ConflictRequiresConfirmation
	if errors.As(err, &cErr) {
		return err
	}
	var xErr *ExecutionFailure
	if errors.As(err, &xErr) {
		return err
	}
	return &Fatal{Err: err}
}

// emitEvent appends a turn-log entry and mirrors it to the structured
// logger, matching the teacher's habit of logging every state-changing
// event payload it persists.
func emitEvent(ctx context.Context, sink store.EventSink, guildID int64, turn int, phase Phase, eventType, entityType, entityID string, audience []string) error {
	e := &model.Event{
		GuildID:              guildID,
		TurnNumber:           turn,
		Phase:                string(phase),
		EventType:            eventType,
		EntityType:           entityType,
		EntityID:             entityID,
		AffectedCharacterIDs: audience,
		Timestamp:            currentTime(),
	}
	if err := sink.Emit(ctx, e); err != nil {
		return err
	}
	logger.LogEventPayload(logger.Get(), eventType, []byte(entityType+":"+entityID))
	return nil
}

// failOrderOnError persists o's terminal state after a phase resolver
// ran: an *ExecutionFailure marks the order FAILED with its reason (the
// spec's "an order was valid at submission but an invariant broke by
// execution time" case); any other error propagates as a Transient/Fatal
// Store failure and aborts the phase.
func failOrderOnError(ctx context.Context, tx store.Store, o *model.Order, err error) error {
	if err == nil {
		o.UpdatedAt = currentTime()
		return tx.PutOrder(ctx, o)
	}
	var ef *ExecutionFailure
	if errors.As(err, &ef) {
		o.Status = model.OrderFailed
		o.RejectionReason = ef.Reason
		o.UpdatedAt = currentTime()
		return tx.PutOrder(ctx, o)
	}
	return wrapStoreErr(err)
}

// ordersForPhase returns this turn's PENDING/ONGOING orders routed to
// phase, sorted by priority then submission time (§4.1).
func ordersForPhase(ctx context.Context, tx store.Store, guildID int64, turn int, phase Phase) ([]model.Order, error) {
	all, err := tx.ListOrdersByTurn(ctx, guildID, turn)
	if err != nil {
		return nil, err
	}
	out := make([]model.Order, 0, len(all))
	for _, o := range all {
		if o.Phase != string(phase) {
			continue
		}
		if o.Status != model.OrderPending && o.Status != model.OrderOngoing {
			continue
		}
		out = append(out, o)
	}
	sortOrders(out)
	return out, nil
}

func sortOrders(orders []model.Order) {
	for i := 1; i < len(orders); i++ {
		j := i
		for j > 0 && ordersLess(orders[j], orders[j-1]) {
			orders[j], orders[j-1] = orders[j-1], orders[j]
			j--
		}
	}
}

func ordersLess(a, b model.Order) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.SubmittedAt.Before(b.SubmittedAt)
}

// AdvanceTurn drives one tenant's turn through every fixed phase in
// order (§2), committing per-phase and retrying a phase once on a
// Transient Store failure before escalating to Fatal. If the tenant has
// turn_resolution_enabled=false, AdvanceTurn is a no-op: no phase runs
// and current_turn does not advance (§6).
func (e *Engine) AdvanceTurn(ctx context.Context, guildID int64) error {
	cfg, err := e.store.GetConfig(ctx, guildID)
	if err != nil {
		return wrapStoreErr(err)
	}
	if !cfg.TurnResolutionEnabled {
		return nil
	}

	if e.locks != nil {
		lease, err := e.locks.Acquire(ctx, guildID)
		if err != nil {
			return wrapStoreErr(err)
		}
		defer lease.Release(ctx)
	}

	for _, phase := range Phases {
		if err := e.runPhaseWithRetry(ctx, guildID, phase); err != nil {
			return err
		}
	}

	return e.advanceCurrentTurn(ctx, guildID)
}

func (e *Engine) runPhaseWithRetry(ctx context.Context, guildID int64, phase Phase) error {
	err := e.runPhase(ctx, guildID, phase)
	var transient *Transient
	if errors.As(err, &transient) {
		err = e.runPhase(ctx, guildID, phase)
		if errors.As(err, &transient) {
			return &Fatal{Err: err}
		}
	}
	return err
}

func (e *Engine) runPhase(ctx context.Context, guildID int64, phase Phase) error {
	tx, err := e.store.Begin(ctx, guildID)
	if err != nil {
		return wrapStoreErr(err)
	}
	defer tx.Rollback()

	cfg, err := tx.GetConfig(ctx, guildID)
	if err != nil {
		return wrapStoreErr(err)
	}

	orders, err := ordersForPhase(ctx, tx, guildID, cfg.CurrentTurn, phase)
	if err != nil {
		return wrapStoreErr(err)
	}

	if err := dispatchPhase(ctx, tx, guildID, cfg.CurrentTurn, phase, tx, orders); err != nil {
		return wrapStoreErr(err)
	}

	if err := tx.(store.Txn).Commit(); err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

// dispatchPhase routes one phase's orders to its resolver. sink is
// passed separately from tx (though presently the same value) so
// resolvers depend only on the narrower store.EventSink interface.
func dispatchPhase(ctx context.Context, tx store.Store, guildID int64, turn int, phase Phase, sink store.EventSink, orders []model.Order) error {
	switch phase {
	case PhaseBeginning:
		return resolveBeginningPhase(ctx, tx, guildID, turn, sink, orders)
	case PhaseResourceTransfer:
		return resolveResourceTransferPhase(ctx, tx, guildID, turn, sink, orders)
	case PhaseResourceCollect:
		return resolveResourceCollectionPhase(ctx, tx, guildID, turn, sink)
	case PhaseMovement:
		return resolveMovementPhase(ctx, tx, guildID, turn, sink, orders, false)
	case PhaseNavalMovement:
		return resolveMovementPhase(ctx, tx, guildID, turn, sink, orders, true)
	case PhaseEncirclement:
		return resolveEncirclementPhase(ctx, tx, guildID, turn, sink)
	case PhaseCombat:
		return resolveCombatPhase(ctx, tx, guildID, turn, sink, false)
	case PhaseNavalCombat:
		return resolveCombatPhase(ctx, tx, guildID, turn, sink, true)
	case PhaseOrganization:
		return resolveUpkeepPhase(ctx, tx, guildID, turn, sink, orders)
	case PhaseConstruction:
		return resolveConstructionPhase(ctx, tx, guildID, turn, sink, orders)
	case PhaseVictory:
		return resolveVictoryPhase(ctx, tx, guildID, turn, sink, orders)
	default:
		return nil
	}
}

func (e *Engine) advanceCurrentTurn(ctx context.Context, guildID int64) error {
	tx, err := e.store.Begin(ctx, guildID)
	if err != nil {
		return wrapStoreErr(err)
	}
	defer tx.Rollback()
	cfg, err := tx.GetConfig(ctx, guildID)
	if err != nil {
		return wrapStoreErr(err)
	}
	cfg.CurrentTurn++
	if err := tx.PutConfig(ctx, cfg); err != nil {
		return wrapStoreErr(err)
	}
	if err := tx.(store.Txn).Commit(); err != nil {
		return wrapStoreErr(err)
	}
	return nil
}
