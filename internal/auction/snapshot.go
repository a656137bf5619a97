package auction

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/nikhil/auction-arena/internal/domain"
)

// TeamState is one team's position in a broadcast snapshot.
type TeamState struct {
	TeamID         uuid.UUID `json:"teamId"`
	TeamName       string    `json:"teamName"`
	CaptainID      uuid.UUID `json:"captainId"`
	Purse          int64     `json:"purse"`
	Spent          int64     `json:"spent"`
	RemainingPurse int64     `json:"remainingPurse"`
	MaxAffordable  int64     `json:"maxAffordable"`
}

// StateSnapshot is the full observable state of one auction, returned
// to command callers and carried in auction-updated events. It is a
// copy; holding one never aliases engine-owned state.
type StateSnapshot struct {
	AuctionID           uuid.UUID              `json:"auctionId"`
	Status              domain.AuctionStatus   `json:"status"`
	CurrentPlayer       *domain.Player         `json:"currentPlayer,omitempty"`
	CurrentPlayerIndex  int                    `json:"currentPlayerIndex"`
	PlayersTotal        int                    `json:"playersTotal"`
	CurrentBid          int64                  `json:"currentBid"`
	NextMinimumBid      int64                  `json:"nextMinimumBid"`
	HighestBidderTeamID *uuid.UUID             `json:"highestBidderTeamId,omitempty"`
	TimerRemaining      int                    `json:"timerRemaining"`
	Teams               []TeamState            `json:"teams"`
	Formations          []domain.TeamFormation `json:"formations"`
}

// State builds a snapshot of the machine. Timer remaining is filled in
// by the engine, which owns the clock.
func (m *Machine) State() *StateSnapshot {
	snap := &StateSnapshot{
		AuctionID:           m.auctionID,
		Status:              m.status,
		CurrentPlayerIndex:  m.idx,
		PlayersTotal:        len(m.order),
		CurrentBid:          m.currentBid,
		NextMinimumBid:      m.ExpectedBid(),
		HighestBidderTeamID: copyID(m.highestBidder),
	}
	if p := m.CurrentPlayer(); p != nil {
		cp := *p
		snap.CurrentPlayer = &cp
	}
	remaining := m.playersRemaining()
	for _, a := range m.ledger.Snapshot() {
		snap.Teams = append(snap.Teams, TeamState{
			TeamID:         a.TeamID,
			TeamName:       a.TeamName,
			CaptainID:      a.CaptainID,
			Purse:          a.Purse,
			Spent:          a.Spent,
			RemainingPurse: a.Purse - a.Spent,
			MaxAffordable:  m.ledger.MaxAffordableBid(a.TeamID, remaining),
		})
	}
	snap.Formations = m.Formations()
	return snap
}

// Formations derives each team's won players and totals from committed
// sales.
func (m *Machine) Formations() []domain.TeamFormation {
	byTeam := make(map[uuid.UUID]*domain.TeamFormation)
	for _, a := range m.ledger.Snapshot() {
		byTeam[a.TeamID] = &domain.TeamFormation{
			TeamID:         a.TeamID,
			TeamName:       a.TeamName,
			TotalSpent:     a.Spent,
			RemainingPurse: a.Purse - a.Spent,
		}
	}

	playerIDs := make([]uuid.UUID, 0, len(m.players))
	for id := range m.players {
		playerIDs = append(playerIDs, id)
	}
	sort.Slice(playerIDs, func(i, j int) bool {
		return playerIDs[i].String() < playerIDs[j].String()
	})
	for _, id := range playerIDs {
		p := m.players[id]
		if p.Status != domain.PlayerStatusSold || p.SoldToTeam == nil {
			continue
		}
		if f, ok := byTeam[*p.SoldToTeam]; ok {
			f.Players = append(f.Players, *p)
		}
	}

	out := make([]domain.TeamFormation, 0, len(byTeam))
	for _, a := range m.ledger.Snapshot() {
		out = append(out, *byTeam[a.TeamID])
	}
	return out
}

// Record builds the persistable auction row reflecting current machine
// state.
func (m *Machine) Record() *domain.Auction {
	orderJSON, _ := json.Marshal(m.order)
	a := &domain.Auction{
		ID:                         m.auctionID,
		HostID:                     m.hostID,
		Name:                       m.name,
		Status:                     m.status,
		CurrentPlayerIndex:         m.idx,
		CurrentBid:                 m.currentBid,
		CurrentHighestBidderTeamID: copyID(m.highestBidder),
		TimerSeconds:               m.cfg.TimerSeconds,
		MaxTokensPerCaptain:        m.cfg.MaxTokensPerCaptain,
		MinBidAmount:               m.cfg.MinBidAmount,
		MinIncrement:               m.cfg.MinIncrement,
		UseFixedIncrements:         m.cfg.UseFixedIncrements,
		UseBasePrice:               m.cfg.UseBasePrice,
		PlayerOrderType:            m.cfg.PlayerOrderType,
		PlayerOrder:                orderJSON,
	}
	if !m.cfg.UseFixedIncrements {
		rangesJSON, _ := json.Marshal(m.cfg.IncrementRanges)
		a.CustomIncrementRanges = rangesJSON
	}
	if p := m.CurrentPlayer(); p != nil {
		a.CurrentPlayerID = copyID(&p.ID)
	}
	if m.startedAt != nil {
		ts := time.UnixMilli(*m.startedAt)
		a.StartedAt = &ts
	}
	if m.completedAt != nil {
		ts := time.UnixMilli(*m.completedAt)
		a.CompletedAt = &ts
	}
	return a
}

// Teams returns persistable team rows with current ledger balances.
func (m *Machine) Teams() []*domain.Team {
	accounts := m.ledger.Snapshot()
	out := make([]*domain.Team, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, &domain.Team{
			ID:        a.TeamID,
			AuctionID: m.auctionID,
			CaptainID: a.CaptainID,
			TeamName:  a.TeamName,
			Purse:     a.Purse,
			Spent:     a.Spent,
		})
	}
	return out
}

// Players returns persistable player rows.
func (m *Machine) Players() []*domain.Player {
	out := make([]*domain.Player, 0, len(m.players))
	for _, p := range m.players {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// machineState is a deep copy of everything a transition can touch,
// used by the engine to roll back when persistence fails.
type machineState struct {
	status        domain.AuctionStatus
	order         []uuid.UUID
	idx           int
	currentBid    int64
	highestBidder *uuid.UUID
	players       map[uuid.UUID]domain.Player
	bids          []domain.Bid
	accounts      []TeamAccount
	startedAt     *int64
	completedAt   *int64
}

func (m *Machine) snapshot() *machineState {
	s := &machineState{
		status:        m.status,
		order:         append([]uuid.UUID(nil), m.order...),
		idx:           m.idx,
		currentBid:    m.currentBid,
		highestBidder: copyID(m.highestBidder),
		players:       make(map[uuid.UUID]domain.Player, len(m.players)),
		bids:          make([]domain.Bid, len(m.bids)),
		accounts:      m.ledger.Snapshot(),
	}
	for id, p := range m.players {
		cp := *p
		if p.SoldToTeam != nil {
			cp.SoldToTeam = copyID(p.SoldToTeam)
		}
		if p.SoldAmount != nil {
			amt := *p.SoldAmount
			cp.SoldAmount = &amt
		}
		s.players[id] = cp
	}
	for i, b := range m.bids {
		s.bids[i] = *b
	}
	if m.startedAt != nil {
		ts := *m.startedAt
		s.startedAt = &ts
	}
	if m.completedAt != nil {
		ts := *m.completedAt
		s.completedAt = &ts
	}
	return s
}

func (m *Machine) restore(s *machineState) {
	m.status = s.status
	m.order = append([]uuid.UUID(nil), s.order...)
	m.idx = s.idx
	m.currentBid = s.currentBid
	m.highestBidder = copyID(s.highestBidder)
	m.players = make(map[uuid.UUID]*domain.Player, len(s.players))
	for id, p := range s.players {
		cp := p
		m.players[id] = &cp
	}
	m.bids = make([]*domain.Bid, len(s.bids))
	for i, b := range s.bids {
		cp := b
		m.bids[i] = &cp
	}
	m.ledger.restore(s.accounts)
	m.startedAt = s.startedAt
	m.completedAt = s.completedAt
}
