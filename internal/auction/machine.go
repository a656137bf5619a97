package auction

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nikhil/auction-arena/internal/domain"
)

// Sale records one committed (or reversed) purchase.
type Sale struct {
	PlayerID uuid.UUID
	TeamID   uuid.UUID
	Amount   int64
}

// Machine is the authoritative state machine for one auction. It owns
// status, the player order walk, the current bid, the bid log, and the
// budget ledger. Every transition validates before mutating, so a
// returned error always means the machine is unchanged. The machine is
// not safe for concurrent use; the owning Engine serializes access.
type Machine struct {
	auctionID uuid.UUID
	hostID    uuid.UUID
	name      string
	cfg       domain.AuctionConfig
	clock     clockwork.Clock

	status        domain.AuctionStatus
	players       map[uuid.UUID]*domain.Player
	order         []uuid.UUID
	idx           int
	currentBid    int64
	highestBidder *uuid.UUID
	bids          []*domain.Bid
	ledger        *BudgetLedger

	startedAt   *int64
	completedAt *int64
}

// NewMachine rehydrates a machine from stored records. Bids marked
// undone are dropped from the working log.
func NewMachine(a *domain.Auction, teams []*domain.Team, players []*domain.Player, bids []*domain.Bid, clock clockwork.Clock) (*Machine, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*domain.Player, len(players))
	for _, p := range players {
		cp := *p
		byID[p.ID] = &cp
	}

	var order []uuid.UUID
	if len(a.PlayerOrder) > 0 {
		if err := json.Unmarshal(a.PlayerOrder, &order); err != nil {
			return nil, fmt.Errorf("decode player order: %w", err)
		}
	}

	active := make([]*domain.Bid, 0, len(bids))
	for _, b := range bids {
		if !b.Undone {
			cp := *b
			active = append(active, &cp)
		}
	}

	m := &Machine{
		auctionID:     a.ID,
		hostID:        a.HostID,
		name:          a.Name,
		cfg:           cfg,
		clock:         clock,
		status:        a.Status,
		players:       byID,
		order:         order,
		idx:           a.CurrentPlayerIndex,
		currentBid:    a.CurrentBid,
		highestBidder: copyID(a.CurrentHighestBidderTeamID),
		bids:          active,
		ledger:        NewBudgetLedger(cfg.MinBidAmount, teams),
	}
	if a.StartedAt != nil {
		ts := a.StartedAt.UnixMilli()
		m.startedAt = &ts
	}
	if a.CompletedAt != nil {
		ts := a.CompletedAt.UnixMilli()
		m.completedAt = &ts
	}
	return m, nil
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	cp := *id
	return &cp
}

// --- accessors ---

func (m *Machine) AuctionID() uuid.UUID           { return m.auctionID }
func (m *Machine) Status() domain.AuctionStatus   { return m.status }
func (m *Machine) Config() domain.AuctionConfig   { return m.cfg }
func (m *Machine) CurrentBid() int64              { return m.currentBid }
func (m *Machine) HighestBidder() *uuid.UUID      { return copyID(m.highestBidder) }
func (m *Machine) CurrentPlayerIndex() int        { return m.idx }
func (m *Machine) Order() []uuid.UUID             { return append([]uuid.UUID(nil), m.order...) }
func (m *Machine) Ledger() *BudgetLedger          { return m.ledger }

// CurrentPlayer returns the player currently on the block, or nil when
// the auction has not started or has finished.
func (m *Machine) CurrentPlayer() *domain.Player {
	if m.idx < 0 || m.idx >= len(m.order) {
		return nil
	}
	return m.players[m.order[m.idx]]
}

// ExpectedBid is the exact amount the next accepted bid must carry:
// the opening ask while no one has bid, the incremented amount after.
func (m *Machine) ExpectedBid() int64 {
	if m.highestBidder == nil {
		return m.currentBid
	}
	return NextMinimumBid(m.currentBid, m.cfg)
}

// playersRemaining counts players after the current one; the reserve
// constraint protects funds for those still to come.
func (m *Machine) playersRemaining() int {
	rem := len(m.order) - m.idx - 1
	if rem < 0 {
		rem = 0
	}
	return rem
}

// --- transitions ---

// Start computes the player order and opens bidding on the first
// player.
func (m *Machine) Start(seed int64) error {
	if m.status.IsTerminal() {
		return domain.ErrAuctionClosed
	}
	if m.status != domain.AuctionStatusDraft && m.status != domain.AuctionStatusPending {
		return domain.ErrAuctionStarted
	}
	if len(m.players) < 1 || m.ledger.TeamCount() < 2 {
		return domain.ErrNotReady
	}

	playerSlice := make([]*domain.Player, 0, len(m.players))
	for _, p := range m.players {
		playerSlice = append(playerSlice, p)
	}
	m.order = ComputeOrder(playerSlice, m.cfg.PlayerOrderType, seed)
	m.idx = 0
	m.status = domain.AuctionStatusActive
	now := m.clock.Now().UnixMilli()
	m.startedAt = &now
	m.openCurrentPlayer()
	return nil
}

// openCurrentPlayer resets per-round state for the player at idx.
func (m *Machine) openCurrentPlayer() {
	p := m.players[m.order[m.idx]]
	p.Status = domain.PlayerStatusPending
	m.currentBid = FirstBid(p, m.cfg)
	m.highestBidder = nil
}

// Bid validates and appends a bid for the current player. The amount
// must equal ExpectedBid exactly; concurrent captains racing for the
// same slot are linearized by the engine, and all but the first see
// ErrStaleBid.
func (m *Machine) Bid(teamID uuid.UUID, amount int64) (*domain.Bid, error) {
	if err := m.requireActive(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: bid amount must be positive", domain.ErrValidation)
	}
	p := m.CurrentPlayer()
	if p == nil {
		return nil, domain.ErrPlayerNotFound
	}
	if p.Status == domain.PlayerStatusSold {
		return nil, domain.ErrPlayerSold
	}
	if _, ok := m.ledger.Account(teamID); !ok {
		return nil, domain.ErrTeamNotFound
	}
	if amount != m.ExpectedBid() {
		return nil, domain.ErrStaleBid
	}
	if !m.ledger.CanBid(teamID, amount, m.playersRemaining()) {
		return nil, domain.ErrInsufficientFunds
	}

	bid := &domain.Bid{
		ID:        uuid.New(),
		AuctionID: m.auctionID,
		PlayerID:  p.ID,
		TeamID:    teamID,
		Amount:    amount,
		CreatedAt: m.clock.Now(),
	}
	m.bids = append(m.bids, bid)
	m.currentBid = amount
	m.highestBidder = copyID(&teamID)
	return bid, nil
}

// Sold commits the current player to the highest bidder at the current
// bid.
func (m *Machine) Sold() (*Sale, error) {
	if err := m.requireActive(); err != nil {
		return nil, err
	}
	p := m.CurrentPlayer()
	if p == nil {
		return nil, domain.ErrPlayerNotFound
	}
	if p.Status == domain.PlayerStatusSold {
		return nil, domain.ErrPlayerSold
	}
	if m.highestBidder == nil {
		return nil, domain.ErrNoBidder
	}

	winner := *m.highestBidder
	if err := m.ledger.CommitSale(winner, m.currentBid); err != nil {
		return nil, err
	}
	amount := m.currentBid
	p.Status = domain.PlayerStatusSold
	p.SoldToTeam = copyID(&winner)
	p.SoldAmount = &amount
	return &Sale{PlayerID: p.ID, TeamID: winner, Amount: amount}, nil
}

// NextPlayer advances the walk. A player left without a committed sale
// is marked unsold. Advancing past the last player completes the
// auction; calling again once completed is a no-op.
func (m *Machine) NextPlayer() error {
	if m.status == domain.AuctionStatusCompleted {
		return nil
	}
	if err := m.requireActive(); err != nil {
		return err
	}

	if p := m.CurrentPlayer(); p != nil && p.Status != domain.PlayerStatusSold {
		p.Status = domain.PlayerStatusUnsold
	}

	m.idx++
	if m.idx >= len(m.order) {
		m.complete()
		return nil
	}
	m.openCurrentPlayer()
	return nil
}

// PreviousResult reports what a PreviousPlayer transition undid.
type PreviousResult struct {
	Reversed     []Sale
	UndoneBidIDs []uuid.UUID
}

// PreviousPlayer walks back one player. The round being left is
// abandoned (its committed sale, if any, reversed); the player walked
// back to is fully re-opened, reversing its sale as well so it can be
// auctioned again.
func (m *Machine) PreviousPlayer() (*PreviousResult, error) {
	if err := m.requireActive(); err != nil {
		return nil, err
	}
	if m.idx == 0 {
		return nil, domain.ErrNoHistory
	}

	saved := m.snapshot()
	res := &PreviousResult{}

	leaving := m.CurrentPlayer()
	if leaving != nil {
		sale, undone, err := m.reopenPlayer(leaving)
		if err != nil {
			m.restore(saved)
			return nil, err
		}
		if sale != nil {
			res.Reversed = append(res.Reversed, *sale)
		}
		res.UndoneBidIDs = append(res.UndoneBidIDs, undone...)
	}

	m.idx--
	landing := m.players[m.order[m.idx]]
	sale, undone, err := m.reopenPlayer(landing)
	if err != nil {
		m.restore(saved)
		return nil, err
	}
	if sale != nil {
		res.Reversed = append(res.Reversed, *sale)
	}
	res.UndoneBidIDs = append(res.UndoneBidIDs, undone...)

	landing.Status = domain.PlayerStatusPending
	m.currentBid = FirstBid(landing, m.cfg)
	m.highestBidder = nil
	return res, nil
}

// reopenPlayer reverses a player's committed sale (if any) and
// invalidates the player's active bids, returning what was undone.
func (m *Machine) reopenPlayer(p *domain.Player) (*Sale, []uuid.UUID, error) {
	var sale *Sale
	if p.Status == domain.PlayerStatusSold && p.SoldToTeam != nil && p.SoldAmount != nil {
		if err := m.ledger.ReverseSale(*p.SoldToTeam, *p.SoldAmount); err != nil {
			return nil, nil, err
		}
		sale = &Sale{PlayerID: p.ID, TeamID: *p.SoldToTeam, Amount: *p.SoldAmount}
	}

	var undone []uuid.UUID
	kept := make([]*domain.Bid, 0, len(m.bids))
	for _, b := range m.bids {
		if b.PlayerID == p.ID {
			b.Undone = true
			undone = append(undone, b.ID)
			continue
		}
		kept = append(kept, b)
	}
	m.bids = kept

	p.Status = domain.PlayerStatusAvailable
	p.SoldToTeam = nil
	p.SoldAmount = nil
	return sale, undone, nil
}

// UndoBid retracts the most recent bid for the current player and
// restores the previous bid (or the opening ask). It never reverses a
// committed sale; that is PreviousPlayer's job.
func (m *Machine) UndoBid() (*domain.Bid, error) {
	if err := m.requireActive(); err != nil {
		return nil, err
	}
	p := m.CurrentPlayer()
	if p == nil {
		return nil, domain.ErrPlayerNotFound
	}
	if p.Status == domain.PlayerStatusSold {
		return nil, domain.ErrPlayerSold
	}

	last := -1
	for i := len(m.bids) - 1; i >= 0; i-- {
		if m.bids[i].PlayerID == p.ID {
			last = i
			break
		}
	}
	if last == -1 {
		return nil, domain.ErrNoBidToUndo
	}

	undone := m.bids[last]
	undone.Undone = true
	m.bids = append(m.bids[:last], m.bids[last+1:]...)

	var prev *domain.Bid
	for i := len(m.bids) - 1; i >= 0; i-- {
		if m.bids[i].PlayerID == p.ID {
			prev = m.bids[i]
			break
		}
	}
	if prev != nil {
		m.currentBid = prev.Amount
		m.highestBidder = copyID(&prev.TeamID)
	} else {
		m.currentBid = FirstBid(p, m.cfg)
		m.highestBidder = nil
	}
	return undone, nil
}

// Pause suspends bidding; the timer freezes at its remaining value.
func (m *Machine) Pause() error {
	if err := m.requireActive(); err != nil {
		return err
	}
	m.status = domain.AuctionStatusPaused
	return nil
}

// Resume reopens bidding from a pause.
func (m *Machine) Resume() error {
	if m.status.IsTerminal() {
		return domain.ErrAuctionClosed
	}
	if m.status != domain.AuctionStatusPaused {
		return domain.ErrAuctionNotPaused
	}
	m.status = domain.AuctionStatusActive
	return nil
}

// Reset returns the auction to pending: full purses, empty bid log,
// all players available, and a freshly computed order.
func (m *Machine) Reset(seed int64) error {
	if m.status.IsTerminal() {
		return domain.ErrAuctionClosed
	}

	m.ledger.Reset()
	m.bids = nil
	for _, p := range m.players {
		p.Status = domain.PlayerStatusAvailable
		p.SoldToTeam = nil
		p.SoldAmount = nil
	}

	playerSlice := make([]*domain.Player, 0, len(m.players))
	for _, p := range m.players {
		playerSlice = append(playerSlice, p)
	}
	m.order = ComputeOrder(playerSlice, m.cfg.PlayerOrderType, seed)
	m.idx = 0
	m.status = domain.AuctionStatusPending
	m.currentBid = 0
	m.highestBidder = nil
	m.startedAt = nil
	m.completedAt = nil
	return nil
}

// Cancel terminates the auction; no further transitions are permitted.
func (m *Machine) Cancel() error {
	if m.status.IsTerminal() {
		return domain.ErrAuctionClosed
	}
	m.status = domain.AuctionStatusCancelled
	return nil
}

// Complete force-completes an active auction.
func (m *Machine) Complete() error {
	if m.status == domain.AuctionStatusCompleted {
		return nil
	}
	if err := m.requireActive(); err != nil {
		return err
	}
	m.complete()
	return nil
}

func (m *Machine) complete() {
	m.status = domain.AuctionStatusCompleted
	m.currentBid = 0
	m.highestBidder = nil
	now := m.clock.Now().UnixMilli()
	m.completedAt = &now
}

func (m *Machine) requireActive() error {
	if m.status.IsTerminal() {
		return domain.ErrAuctionClosed
	}
	if m.status != domain.AuctionStatusActive {
		return domain.ErrAuctionNotActive
	}
	return nil
}
