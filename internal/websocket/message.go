package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	// Client to Server
	MessageTypeJoinAuction MessageType = "JOIN_AUCTION"
	MessageTypeSyncState   MessageType = "SYNC_STATE"

	// Server to Client
	MessageTypeStateSync      MessageType = "STATE_SYNC"
	MessageTypeAuctionUpdated MessageType = "AUCTION_UPDATED"
	MessageTypeBidPlaced      MessageType = "BID_PLACED"
	MessageTypeTeamUpdated    MessageType = "TEAM_UPDATED"
	MessageTypeTimerTick      MessageType = "TIMER_TICK"
	MessageTypeTimerExpired   MessageType = "TIMER_EXPIRED"
	MessageTypeError          MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type JoinAuctionPayload struct {
	AuctionID string `json:"auctionId"`
}

// Server to Client payloads

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
