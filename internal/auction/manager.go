package auction

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nikhil/auction-arena/internal/domain"
	"github.com/rs/zerolog"
)

// Manager owns one engine per live auction id. Engines are constructed
// on demand from the store and torn down when their auction completes
// or is cancelled; auctions share nothing, so they scale independently.
type Manager struct {
	store    Store
	notifier Notifier
	clock    clockwork.Clock
	log      zerolog.Logger

	mu      sync.Mutex
	engines map[uuid.UUID]*Engine
	cancels map[uuid.UUID]context.CancelFunc
}

func NewManager(store Store, notifier Notifier, clock clockwork.Clock, log zerolog.Logger) *Manager {
	return &Manager{
		store:    store,
		notifier: notifier,
		clock:    clock,
		log:      log,
		engines:  make(map[uuid.UUID]*Engine),
		cancels:  make(map[uuid.UUID]context.CancelFunc),
	}
}

// Engine returns the running engine for an auction, rehydrating one
// from the store if none is live. Terminal auctions get no engine.
func (m *Manager) Engine(ctx context.Context, auctionID uuid.UUID) (*Engine, error) {
	m.mu.Lock()
	if e, ok := m.engines[auctionID]; ok {
		m.mu.Unlock()
		return e, nil
	}
	m.mu.Unlock()

	a, err := m.store.LoadAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if a.Status.IsTerminal() {
		return nil, domain.ErrAuctionClosed
	}
	teams, err := m.store.LoadTeams(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	players, err := m.store.LoadPlayers(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	bids, err := m.store.LoadBids(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	machine, err := NewMachine(a, teams, players, bids, m.clock)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.engines[auctionID]; ok {
		// Lost the race; another caller rehydrated it first.
		return e, nil
	}

	e := NewEngine(machine, m.store, m.notifier, m.clock, m.log)
	e.SetOnClosed(m.remove)
	runCtx, cancel := context.WithCancel(context.Background())
	m.engines[auctionID] = e
	m.cancels[auctionID] = cancel
	go e.Run(runCtx)
	m.log.Info().Str("auction_id", auctionID.String()).Msg("auction engine started")
	return e, nil
}

func (m *Manager) remove(auctionID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cancel, ok := m.cancels[auctionID]; ok {
		cancel()
		delete(m.cancels, auctionID)
	}
	delete(m.engines, auctionID)
	m.log.Info().Str("auction_id", auctionID.String()).Msg("auction engine torn down")
}

// Shutdown stops every live engine.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(m.cancels))
	for _, c := range m.cancels {
		cancels = append(cancels, c)
	}
	m.mu.Unlock()
	for _, c := range cancels {
		c()
	}
}
