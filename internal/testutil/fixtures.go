package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nikhil/auction-arena/internal/domain"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	displayName string
	password    string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		displayName: fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password:    "testpassword123",
	}
}

// WithDisplayName sets the display name
func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		DisplayName:  b.displayName,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate creates a user via API and returns the user and access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]string{
		"displayName": b.displayName,
		"password":    b.password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.User.ID)
	user := &domain.User{
		ID:          userID,
		DisplayName: authResp.User.DisplayName,
	}

	return user, authResp.AccessToken
}

// AuctionBuilder creates test auctions with a builder pattern
type AuctionBuilder struct {
	host            *domain.User
	name            string
	status          domain.AuctionStatus
	maxTokens       int64
	minBid          int64
	minIncrement    int64
	timerSeconds    int
	useBasePrice    bool
	orderType       domain.PlayerOrderType
	incrementRanges *domain.IncrementRanges
}

// NewAuctionBuilder creates a new AuctionBuilder with default values
func NewAuctionBuilder() *AuctionBuilder {
	return &AuctionBuilder{
		name:         fmt.Sprintf("Test Auction %s", uuid.New().String()[:8]),
		status:       domain.AuctionStatusDraft,
		maxTokens:    1000,
		minBid:       10,
		minIncrement: 5,
		timerSeconds: 30,
		orderType:    domain.PlayerOrderAlphabetical,
	}
}

// WithHost sets the auction host
func (b *AuctionBuilder) WithHost(user *domain.User) *AuctionBuilder {
	b.host = user
	return b
}

// WithName sets the auction name
func (b *AuctionBuilder) WithName(name string) *AuctionBuilder {
	b.name = name
	return b
}

// WithStatus sets the auction status
func (b *AuctionBuilder) WithStatus(status domain.AuctionStatus) *AuctionBuilder {
	b.status = status
	return b
}

// WithBudget sets the per-captain token budget
func (b *AuctionBuilder) WithBudget(maxTokens int64) *AuctionBuilder {
	b.maxTokens = maxTokens
	return b
}

// WithMinBid sets the minimum bid amount
func (b *AuctionBuilder) WithMinBid(minBid int64) *AuctionBuilder {
	b.minBid = minBid
	return b
}

// WithTimerSeconds sets the countdown duration
func (b *AuctionBuilder) WithTimerSeconds(seconds int) *AuctionBuilder {
	b.timerSeconds = seconds
	return b
}

// WithBasePrice enables base prices as opening asks
func (b *AuctionBuilder) WithBasePrice() *AuctionBuilder {
	b.useBasePrice = true
	return b
}

// WithOrderType sets the player ordering policy
func (b *AuctionBuilder) WithOrderType(orderType domain.PlayerOrderType) *AuctionBuilder {
	b.orderType = orderType
	return b
}

// WithIncrementRanges switches the auction to tiered increments
func (b *AuctionBuilder) WithIncrementRanges(r domain.IncrementRanges) *AuctionBuilder {
	b.incrementRanges = &r
	return b
}

// Build creates the auction in the database
func (b *AuctionBuilder) Build(t *testing.T, db *gorm.DB) *domain.Auction {
	t.Helper()

	if b.host == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.host = user
	}

	a := &domain.Auction{
		ID:                  uuid.New(),
		HostID:              b.host.ID,
		Name:                b.name,
		Status:              b.status,
		TimerSeconds:        b.timerSeconds,
		MaxTokensPerCaptain: b.maxTokens,
		MinBidAmount:        b.minBid,
		MinIncrement:        b.minIncrement,
		UseFixedIncrements:  b.incrementRanges == nil,
		UseBasePrice:        b.useBasePrice,
		PlayerOrderType:     b.orderType,
		CreatedAt:           time.Now(),
	}
	if b.incrementRanges != nil {
		rangesJSON, err := json.Marshal(b.incrementRanges)
		if err != nil {
			t.Fatalf("failed to marshal increment ranges: %v", err)
		}
		a.CustomIncrementRanges = rangesJSON
	}

	if err := db.Create(a).Error; err != nil {
		t.Fatalf("failed to create auction: %v", err)
	}

	return a
}

// SeedTeam creates a team led by a fresh captain with the auction's full purse
func SeedTeam(t *testing.T, db *gorm.DB, a *domain.Auction, name string) *domain.Team {
	t.Helper()

	captain, _ := NewUserBuilder().Build(t, db)
	team := &domain.Team{
		ID:        uuid.New(),
		AuctionID: a.ID,
		CaptainID: captain.ID,
		TeamName:  name,
		Purse:     a.MaxTokensPerCaptain,
		CreatedAt: time.Now(),
	}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("failed to create team: %v", err)
	}
	return team
}

// SeedPlayer creates an available player in the auction pool
func SeedPlayer(t *testing.T, db *gorm.DB, a *domain.Auction, name string, basePrice *int64) *domain.Player {
	t.Helper()

	player := &domain.Player{
		ID:          uuid.New(),
		AuctionID:   a.ID,
		DisplayName: name,
		BasePrice:   basePrice,
		Status:      domain.PlayerStatusAvailable,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(player).Error; err != nil {
		t.Fatalf("failed to create player: %v", err)
	}
	return player
}

// SeedPlayers creates N available players named "Player 00".. in the pool
func SeedPlayers(t *testing.T, db *gorm.DB, a *domain.Auction, count int) []*domain.Player {
	t.Helper()

	players := make([]*domain.Player, count)
	for i := 0; i < count; i++ {
		players[i] = SeedPlayer(t, db, a, fmt.Sprintf("Player %02d", i), nil)
	}
	return players
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
