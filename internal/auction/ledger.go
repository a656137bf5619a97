package auction

import (
	"sort"

	"github.com/google/uuid"
	"github.com/nikhil/auction-arena/internal/domain"
)

// TeamAccount is one team's purse position inside the ledger.
type TeamAccount struct {
	TeamID    uuid.UUID
	CaptainID uuid.UUID
	TeamName  string
	Purse     int64
	Spent     int64
}

// Remaining is the team's spendable balance before any reserve.
func (a *TeamAccount) Remaining() int64 {
	return a.Purse - a.Spent
}

// BudgetLedger tracks every team's purse for one auction and enforces
// the reserve constraint: a team may never bid itself out of the funds
// it needs to fill its remaining mandatory squad slots at minimum
// price. The ledger is owned by the auction's engine and is never
// shared across auctions.
type BudgetLedger struct {
	minBidAmount int64
	accounts     map[uuid.UUID]*TeamAccount
}

func NewBudgetLedger(minBidAmount int64, teams []*domain.Team) *BudgetLedger {
	accounts := make(map[uuid.UUID]*TeamAccount, len(teams))
	for _, t := range teams {
		accounts[t.ID] = &TeamAccount{
			TeamID:    t.ID,
			CaptainID: t.CaptainID,
			TeamName:  t.TeamName,
			Purse:     t.Purse,
			Spent:     t.Spent,
		}
	}
	return &BudgetLedger{
		minBidAmount: minBidAmount,
		accounts:     accounts,
	}
}

// Account returns the ledger entry for a team.
func (l *BudgetLedger) Account(teamID uuid.UUID) (*TeamAccount, bool) {
	a, ok := l.accounts[teamID]
	return a, ok
}

// TeamCount returns the number of teams in the auction.
func (l *BudgetLedger) TeamCount() int {
	return len(l.accounts)
}

// playersNeeded is the minimum number of players this team must still
// be able to buy, given how many players remain in the auction overall.
func (l *BudgetLedger) playersNeeded(playersRemaining int) int {
	if playersRemaining <= 0 || len(l.accounts) == 0 {
		return 0
	}
	return (playersRemaining + len(l.accounts) - 1) / len(l.accounts)
}

// MaxAffordableBid is the largest bid the team can place right now:
// its remaining purse minus the reserve required to fill mandatory
// slots at minimum price.
func (l *BudgetLedger) MaxAffordableBid(teamID uuid.UUID, playersRemaining int) int64 {
	a, ok := l.accounts[teamID]
	if !ok {
		return 0
	}
	reserve := int64(l.playersNeeded(playersRemaining)) * l.minBidAmount
	max := a.Remaining() - reserve
	if max < 0 {
		return 0
	}
	return max
}

// CanBid reports whether the team can place a bid of amount without
// violating its purse or its reserve.
func (l *BudgetLedger) CanBid(teamID uuid.UUID, amount int64, playersRemaining int) bool {
	a, ok := l.accounts[teamID]
	if !ok {
		return false
	}
	return amount <= a.Remaining() && amount <= l.MaxAffordableBid(teamID, playersRemaining)
}

// CommitSale debits the team for a won player. CanBid must have passed
// for this amount; the negative-purse check here is a final invariant
// guard, not the primary gate.
func (l *BudgetLedger) CommitSale(teamID uuid.UUID, amount int64) error {
	a, ok := l.accounts[teamID]
	if !ok {
		return domain.ErrTeamNotFound
	}
	if a.Spent+amount > a.Purse {
		return domain.ErrInsufficientFunds
	}
	a.Spent += amount
	return nil
}

// ReverseSale credits a previously committed sale back to the team.
func (l *BudgetLedger) ReverseSale(teamID uuid.UUID, amount int64) error {
	a, ok := l.accounts[teamID]
	if !ok {
		return domain.ErrTeamNotFound
	}
	if a.Spent-amount < 0 {
		return domain.ErrInsufficientFunds
	}
	a.Spent -= amount
	return nil
}

// Reset restores every team to its full purse.
func (l *BudgetLedger) Reset() {
	for _, a := range l.accounts {
		a.Spent = 0
	}
}

// Snapshot returns a stable, copied view of all accounts ordered by
// team id.
func (l *BudgetLedger) Snapshot() []TeamAccount {
	out := make([]TeamAccount, 0, len(l.accounts))
	for _, a := range l.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TeamID.String() < out[j].TeamID.String()
	})
	return out
}

// restore replaces account balances from a snapshot.
func (l *BudgetLedger) restore(snap []TeamAccount) {
	for i := range snap {
		if a, ok := l.accounts[snap[i].TeamID]; ok {
			a.Spent = snap[i].Spent
		}
	}
}
