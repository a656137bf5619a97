package auction

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nikhil/auction-arena/internal/domain"
	"github.com/rs/zerolog"
)

// Action names one mutating operation on an auction.
type Action string

const (
	ActionStart    Action = "start"
	ActionBid      Action = "bid"
	ActionSold     Action = "sold"
	ActionNext     Action = "next_player"
	ActionPrevious Action = "previous_player"
	ActionUndoBid  Action = "undo_bid"
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
	ActionReset    Action = "reset"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
)

// Command is one mutating request submitted to an engine.
type Command struct {
	Action Action
	TeamID uuid.UUID
	Amount int64
}

type commandResult struct {
	state *StateSnapshot
	err   error
}

type commandEnvelope struct {
	ctx   context.Context
	cmd   Command
	reply chan commandResult
}

// Engine is the single authoritative owner of one auction's state. All
// mutating actions are serialized through its command queue: the loop
// processes one command at a time, so affordability checks and ledger
// mutations are atomic with respect to each other. No other component
// holds this state.
//
// Every transition is committed to the store before it is announced;
// if the store fails, the in-memory state is rolled back and the
// caller gets a retryable error.
type Engine struct {
	id       uuid.UUID
	machine  *Machine
	store    Store
	notifier Notifier
	timer    *TimerController
	clock    clockwork.Clock
	log      zerolog.Logger
	seed     func() int64

	commands chan commandEnvelope
	ticks    chan int
	expired  chan struct{}
	closed   chan struct{}
	onClosed func(uuid.UUID)
}

// NewEngine wires an engine around a rehydrated machine. Run must be
// called before Submit.
func NewEngine(m *Machine, store Store, notifier Notifier, clock clockwork.Clock, log zerolog.Logger) *Engine {
	e := &Engine{
		id:       m.AuctionID(),
		machine:  m,
		store:    store,
		notifier: notifier,
		clock:    clock,
		log:      log.With().Str("auction_id", m.AuctionID().String()).Logger(),
		seed:     func() int64 { return clock.Now().UnixNano() },
		commands: make(chan commandEnvelope),
		ticks:    make(chan int, 1),
		expired:  make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
	e.timer = NewTimerController(clock, m.Config().TimerSeconds, e.enqueueTick, e.enqueueExpired)
	return e
}

// SetSeed overrides the order seed source; tests use it to pin the
// random player order.
func (e *Engine) SetSeed(seed func() int64) { e.seed = seed }

// SetOnClosed registers a teardown callback invoked once the engine
// loop has exited.
func (e *Engine) SetOnClosed(fn func(uuid.UUID)) { e.onClosed = fn }

// ID returns the auction id this engine owns.
func (e *Engine) ID() uuid.UUID { return e.id }

// Run processes commands until the auction reaches a terminal state or
// ctx is cancelled. It must run in its own goroutine.
func (e *Engine) Run(ctx context.Context) {
	defer e.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case env := <-e.commands:
			res := e.handle(env.ctx, env.cmd)
			env.reply <- res
			if e.machine.Status().IsTerminal() {
				return
			}
		case remaining := <-e.ticks:
			e.notifier.Publish(e.id, Event{
				Type:      EventTimerTick,
				AuctionID: e.id,
				At:        e.clock.Now(),
				Payload:   TimerTickPayload{Remaining: remaining},
			})
		case <-e.expired:
			e.log.Info().Msg("auction timer expired")
			e.notifier.Publish(e.id, Event{
				Type:      EventTimerExpired,
				AuctionID: e.id,
				At:        e.clock.Now(),
			})
		}
	}
}

// Submit enqueues a command and waits for the engine to process it.
// Commands submitted to a closed engine fail with ErrAuctionClosed.
func (e *Engine) Submit(ctx context.Context, cmd Command) (*StateSnapshot, error) {
	env := commandEnvelope{ctx: ctx, cmd: cmd, reply: make(chan commandResult, 1)}
	select {
	case e.commands <- env:
	case <-e.closed:
		return nil, domain.ErrAuctionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-env.reply:
		return res.state, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// State returns the current snapshot without mutating anything.
func (e *Engine) State(ctx context.Context) (*StateSnapshot, error) {
	// Reads go through the queue too, so they never observe a
	// half-applied transition.
	env := commandEnvelope{ctx: ctx, cmd: Command{Action: ""}, reply: make(chan commandResult, 1)}
	select {
	case e.commands <- env:
	case <-e.closed:
		return e.snapshotState(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-env.reply:
		return res.state, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) enqueueTick(remaining int) {
	select {
	case e.ticks <- remaining:
	default:
	}
}

func (e *Engine) enqueueExpired() {
	select {
	case e.expired <- struct{}{}:
	default:
	}
}

func (e *Engine) snapshotState() *StateSnapshot {
	s := e.machine.State()
	s.TimerRemaining = e.timer.Remaining()
	return s
}

func (e *Engine) handle(ctx context.Context, cmd Command) commandResult {
	if cmd.Action == "" {
		return commandResult{state: e.snapshotState()}
	}

	snap := e.machine.snapshot()
	wasCompleted := e.machine.Status() == domain.AuctionStatusCompleted

	var (
		newBid    *domain.Bid
		undone    []uuid.UUID
		clearBids bool
		err       error
	)

	switch cmd.Action {
	case ActionStart:
		err = e.machine.Start(e.seed())
	case ActionBid:
		newBid, err = e.machine.Bid(cmd.TeamID, cmd.Amount)
	case ActionSold:
		_, err = e.machine.Sold()
	case ActionNext:
		err = e.machine.NextPlayer()
	case ActionPrevious:
		var res *PreviousResult
		res, err = e.machine.PreviousPlayer()
		if err == nil {
			undone = res.UndoneBidIDs
		}
	case ActionUndoBid:
		var b *domain.Bid
		b, err = e.machine.UndoBid()
		if err == nil {
			undone = []uuid.UUID{b.ID}
		}
	case ActionPause:
		err = e.machine.Pause()
	case ActionResume:
		err = e.machine.Resume()
	case ActionReset:
		err = e.machine.Reset(e.seed())
		clearBids = err == nil
	case ActionCancel:
		err = e.machine.Cancel()
	case ActionComplete:
		err = e.machine.Complete()
	default:
		err = fmt.Errorf("%w: unknown action %q", domain.ErrValidation, cmd.Action)
	}
	if err != nil {
		return commandResult{state: e.snapshotState(), err: err}
	}

	// nextPlayer on a completed auction is an accepted no-op; nothing
	// changed, so skip the write and the broadcast.
	if cmd.Action == ActionNext && wasCompleted {
		return commandResult{state: e.snapshotState()}
	}

	cs := &ChangeSet{
		Auction:      e.machine.Record(),
		Teams:        e.machine.Teams(),
		Players:      e.machine.Players(),
		NewBid:       newBid,
		UndoneBidIDs: undone,
		ClearBids:    clearBids,
	}
	if err := e.store.Apply(ctx, cs); err != nil {
		e.machine.restore(snap)
		e.log.Error().Err(err).Str("action", string(cmd.Action)).Msg("persist failed, transition rolled back")
		return commandResult{
			state: e.snapshotState(),
			err:   fmt.Errorf("%w: %v", domain.ErrPersistence, err),
		}
	}

	e.applyTimerEffects(cmd.Action)

	state := e.snapshotState()
	e.publish(cmd.Action, newBid, state)
	e.log.Info().
		Str("action", string(cmd.Action)).
		Str("status", string(state.Status)).
		Int64("current_bid", state.CurrentBid).
		Msg("transition committed")
	return commandResult{state: state}
}

// applyTimerEffects couples the countdown to committed transitions:
// reset on accepted bid, freeze on pause, continue on resume, fresh
// countdown per round, stopped once nothing is biddable.
func (e *Engine) applyTimerEffects(action Action) {
	switch action {
	case ActionStart:
		e.timer.Start()
	case ActionBid:
		e.timer.Reset()
	case ActionPause:
		e.timer.Pause()
	case ActionResume:
		e.timer.Resume()
	case ActionNext, ActionPrevious:
		if e.machine.Status() == domain.AuctionStatusActive {
			e.timer.Reset()
		} else {
			e.timer.Stop()
		}
	case ActionSold, ActionReset, ActionCancel, ActionComplete:
		e.timer.Stop()
	}
}

func (e *Engine) publish(action Action, newBid *domain.Bid, state *StateSnapshot) {
	now := e.clock.Now()
	if action == ActionBid && newBid != nil {
		e.notifier.Publish(e.id, Event{
			Type:      EventBidPlaced,
			AuctionID: e.id,
			At:        now,
			Payload:   BidPlacedPayload{Bid: newBid, State: state},
		})
		return
	}
	if action == ActionSold || action == ActionPrevious || action == ActionReset {
		e.notifier.Publish(e.id, Event{
			Type:      EventTeamUpdated,
			AuctionID: e.id,
			At:        now,
			Payload:   TeamUpdatedPayload{Teams: state.Teams, State: state},
		})
	}
	e.notifier.Publish(e.id, Event{
		Type:      EventAuctionUpdated,
		AuctionID: e.id,
		At:        now,
		Payload:   state,
	})
}

// shutdown stops the timer and rejects every queued or future command
// with ErrAuctionClosed instead of silently dropping it.
func (e *Engine) shutdown() {
	e.timer.Stop()
	for {
		select {
		case env := <-e.commands:
			env.reply <- commandResult{err: domain.ErrAuctionClosed}
		default:
			close(e.closed)
			if e.onClosed != nil {
				e.onClosed(e.id)
			}
			return
		}
	}
}
