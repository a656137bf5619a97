package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Auction struct {
	ID                  string `json:"id"`
	HostID              string `json:"hostId"`
	Name                string `json:"name"`
	Status              string `json:"status"`
	TimerSeconds        int    `json:"timerSeconds"`
	MaxTokensPerCaptain int64  `json:"maxTokensPerCaptain"`
	MinBidAmount        int64  `json:"minBidAmount"`
	PlayerOrderType     string `json:"playerOrderType"`
}

type Team struct {
	ID        string `json:"id"`
	AuctionID string `json:"auctionId"`
	CaptainID string `json:"captainId"`
	TeamName  string `json:"teamName"`
	Purse     int64  `json:"purse"`
	Spent     int64  `json:"spent"`
	Remaining int64  `json:"remaining"`
}

type Player struct {
	ID          string `json:"id"`
	AuctionID   string `json:"auctionId"`
	DisplayName string `json:"displayName"`
	Status      string `json:"status"`
}

type AuctionState struct {
	AuctionID           string  `json:"auctionId"`
	Status              string  `json:"status"`
	CurrentPlayer       *Player `json:"currentPlayer"`
	CurrentPlayerIndex  int     `json:"currentPlayerIndex"`
	PlayersTotal        int     `json:"playersTotal"`
	CurrentBid          int64   `json:"currentBid"`
	NextMinimumBid      int64   `json:"nextMinimumBid"`
	HighestBidderTeamID *string `json:"highestBidderTeamId"`
	TimerRemaining      int     `json:"timerRemaining"`
}

// RegisterUser creates a new user account
func (c *APIClient) RegisterUser(baseName string) (*User, string, error) {
	displayName := fmt.Sprintf("%s_%d", baseName, time.Now().UnixNano()%100000)

	body := map[string]string{
		"displayName": displayName,
		"password":    "testpassword123",
	}

	resp, err := c.post("/auth/register", body, "")
	if err != nil {
		return nil, "", fmt.Errorf("register request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("register failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, "", fmt.Errorf("failed to decode response: %w", err)
	}

	return &result.User, result.AccessToken, nil
}

// CreateAuction creates a new auction owned by the token's user
func (c *APIClient) CreateAuction(token, name string, budget, minBid int64, timerSeconds int) (*Auction, error) {
	increment := minBid / 2
	if increment < 1 {
		increment = 1
	}
	body := map[string]interface{}{
		"name":                name,
		"maxTokensPerCaptain": budget,
		"minBidAmount":        minBid,
		"minIncrement":        increment,
		"useFixedIncrements":  true,
		"timerSeconds":        timerSeconds,
		"playerOrderType":     "alphabetical",
	}

	resp, err := c.post("/auctions", body, token)
	if err != nil {
		return nil, fmt.Errorf("create auction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create auction failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var auction Auction
	if err := json.NewDecoder(resp.Body).Decode(&auction); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &auction, nil
}

// AddTeam registers a captain's team for the auction
func (c *APIClient) AddTeam(token, auctionID, captainID, teamName string) (*Team, error) {
	body := map[string]string{
		"captainId": captainID,
		"teamName":  teamName,
	}

	resp, err := c.post("/auctions/"+auctionID+"/teams", body, token)
	if err != nil {
		return nil, fmt.Errorf("add team request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("add team failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var team Team
	if err := json.NewDecoder(resp.Body).Decode(&team); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &team, nil
}

// AddPlayer adds a player to the auction pool
func (c *APIClient) AddPlayer(token, auctionID, displayName string) (*Player, error) {
	body := map[string]string{
		"displayName": displayName,
	}

	resp, err := c.post("/auctions/"+auctionID+"/players", body, token)
	if err != nil {
		return nil, fmt.Errorf("add player request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("add player failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var player Player
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &player, nil
}

// StartAuction opens the live auction
func (c *APIClient) StartAuction(token, auctionID string) (*AuctionState, error) {
	return c.command(token, auctionID, "start")
}

// PlaceBid submits a bid for the player on the block
func (c *APIClient) PlaceBid(token, auctionID string, amount int64) (*AuctionState, error) {
	body := map[string]int64{
		"amount": amount,
	}

	resp, err := c.post("/auctions/"+auctionID+"/bids", body, token)
	if err != nil {
		return nil, fmt.Errorf("place bid request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("place bid failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var state AuctionState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &state, nil
}

// MarkSold awards the current player to the highest bidder
func (c *APIClient) MarkSold(token, auctionID string) (*AuctionState, error) {
	return c.command(token, auctionID, "sold")
}

// NextPlayer advances to the next player in the queue
func (c *APIClient) NextPlayer(token, auctionID string) (*AuctionState, error) {
	return c.command(token, auctionID, "next-player")
}

// GetState fetches the live auction state
func (c *APIClient) GetState(token, auctionID string) (*AuctionState, error) {
	resp, err := c.get("/auctions/"+auctionID+"/state", token)
	if err != nil {
		return nil, fmt.Errorf("get state request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get state failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var state AuctionState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &state, nil
}

func (c *APIClient) command(token, auctionID, action string) (*AuctionState, error) {
	resp, err := c.post("/auctions/"+auctionID+"/"+action, nil, token)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s failed (status %d): %s", action, resp.StatusCode, string(bodyBytes))
	}

	var state AuctionState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &state, nil
}

// HTTP helpers

func (c *APIClient) get(path, token string) (*http.Response, error) {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

func (c *APIClient) post(path string, body interface{}, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest("POST", c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
