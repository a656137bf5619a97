package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/nikhil/auction-arena/internal/auction"
	"github.com/nikhil/auction-arena/internal/websocket"
)

// WSClient is a test WebSocket client
type WSClient struct {
	t        *testing.T
	conn     *gorillaWS.Conn
	messages chan *websocket.Message
	errors   chan error
	done     chan struct{}
	mu       sync.Mutex
}

// NewWSClient creates a new WebSocket test client
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	dialer := gorillaWS.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect to websocket: %v", err)
	}

	client := &WSClient{
		t:        t,
		conn:     conn,
		messages: make(chan *websocket.Message, 100),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
	}

	go client.readPump()

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

// readPump reads messages from the WebSocket connection
func (c *WSClient) readPump() {
	defer close(c.messages)
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				select {
				case <-c.done:
					return
				case c.errors <- err:
				}
				return
			}

			var msg websocket.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				c.errors <- err
				continue
			}

			select {
			case c.messages <- &msg:
			case <-c.done:
				return
			}
		}
	}
}

// Close closes the WebSocket connection gracefully
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
		close(c.done)
		c.conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
		c.conn.Close()
	}
}

func (c *WSClient) send(msgType websocket.MessageType, payload interface{}) {
	c.t.Helper()

	msg, err := websocket.NewMessage(msgType, payload)
	if err != nil {
		c.t.Fatalf("failed to build message: %v", err)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("failed to marshal message: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(gorillaWS.TextMessage, data); err != nil {
		c.t.Fatalf("failed to write message: %v", err)
	}
}

// JoinAuction subscribes this client to an auction's event stream
func (c *WSClient) JoinAuction(auctionID string) {
	c.t.Helper()
	c.send(websocket.MessageTypeJoinAuction, websocket.JoinAuctionPayload{AuctionID: auctionID})
}

// SyncState requests a full state snapshot of the joined auction
func (c *WSClient) SyncState() {
	c.t.Helper()
	c.send(websocket.MessageTypeSyncState, struct{}{})
}

// ExpectMessage waits for a message of the given type, failing on timeout
// or if a different type arrives first
func (c *WSClient) ExpectMessage(msgType websocket.MessageType, timeout time.Duration) *websocket.Message {
	c.t.Helper()

	select {
	case msg, ok := <-c.messages:
		if !ok {
			c.t.Fatalf("connection closed while waiting for %s", msgType)
			return nil
		}
		if msg.Type != msgType {
			c.t.Fatalf("expected message type %s, got %s", msgType, msg.Type)
			return nil
		}
		return msg
	case err := <-c.errors:
		c.t.Fatalf("websocket error while waiting for %s: %v", msgType, err)
		return nil
	case <-time.After(timeout):
		c.t.Fatalf("timed out waiting for message type %s", msgType)
		return nil
	}
}

// ExpectStateSync waits for a STATE_SYNC message and decodes the snapshot
func (c *WSClient) ExpectStateSync(timeout time.Duration) *auction.StateSnapshot {
	c.t.Helper()

	msg := c.ExpectMessage(websocket.MessageTypeStateSync, timeout)
	var snapshot auction.StateSnapshot
	if err := json.Unmarshal(msg.Payload, &snapshot); err != nil {
		c.t.Fatalf("failed to decode state sync payload: %v", err)
	}
	return &snapshot
}

// ExpectBidPlaced waits for a BID_PLACED event and decodes it
func (c *WSClient) ExpectBidPlaced(timeout time.Duration) *auction.BidPlacedPayload {
	c.t.Helper()

	msg := c.ExpectMessage(websocket.MessageTypeBidPlaced, timeout)
	var payload auction.BidPlacedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.t.Fatalf("failed to decode bid placed payload: %v", err)
	}
	return &payload
}

// ExpectError waits for an ERROR message and decodes it
func (c *WSClient) ExpectError(timeout time.Duration) *websocket.ErrorPayload {
	c.t.Helper()

	msg := c.ExpectMessage(websocket.MessageTypeError, timeout)
	var payload websocket.ErrorPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.t.Fatalf("failed to decode error payload: %v", err)
	}
	return &payload
}

// ExpectNoMessage verifies no message arrives within the window
func (c *WSClient) ExpectNoMessage(timeout time.Duration) {
	c.t.Helper()

	select {
	case msg, ok := <-c.messages:
		if ok {
			c.t.Fatalf("expected no message, got %s", msg.Type)
		}
	case <-time.After(timeout):
	}
}

// SkipUntilMessageType discards messages until one of the given type
// arrives, failing on timeout
func (c *WSClient) SkipUntilMessageType(msgType websocket.MessageType, timeout time.Duration) *websocket.Message {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case msg, ok := <-c.messages:
			if !ok {
				c.t.Fatalf("connection closed while waiting for %s", msgType)
				return nil
			}
			if msg.Type == msgType {
				return msg
			}
		case err := <-c.errors:
			c.t.Fatalf("websocket error while waiting for %s: %v", msgType, err)
			return nil
		case <-deadline:
			c.t.Fatalf("timed out waiting for message type %s", msgType)
			return nil
		}
	}
}

// DrainMessages discards any buffered messages
func (c *WSClient) DrainMessages() {
	for {
		select {
		case <-c.messages:
		default:
			return
		}
	}
}
