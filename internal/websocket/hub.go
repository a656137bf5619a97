package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/nikhil/auction-arena/internal/auction"
)

// StateProvider resolves a full auction snapshot for state syncs.
type StateProvider interface {
	GetState(ctx context.Context, auctionID uuid.UUID) (*auction.StateSnapshot, error)
}

// Hub fans committed auction events out to subscribed clients. It is
// the Notifier implementation the engines publish through; it holds no
// authoritative auction state of its own.
type Hub struct {
	clients     map[*Client]bool
	subscribers map[uuid.UUID]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	joinAuction chan *JoinAuctionRequest
	syncState   chan *Client
	events      chan auction.Event
	stop        chan struct{}
	done        chan struct{}
	stopped     bool

	states StateProvider

	mu sync.RWMutex
}

type JoinAuctionRequest struct {
	Client    *Client
	AuctionID uuid.UUID
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		subscribers: make(map[uuid.UUID]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		joinAuction: make(chan *JoinAuctionRequest),
		syncState:   make(chan *Client),
		events:      make(chan auction.Event, 256),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// SetStateProvider wires the snapshot source used for SYNC_STATE
// requests. Set once at startup, before Run.
func (h *Hub) SetStateProvider(p StateProvider) {
	h.states = p
}

// Publish implements auction.Notifier. Events are queued onto the
// hub's loop; a full queue drops the event rather than blocking the
// engine, since every event carries (or can be re-fetched as) full
// state.
func (h *Hub) Publish(auctionID uuid.UUID, event auction.Event) {
	select {
	case h.events <- event:
	case <-h.done:
	default:
		log.Printf("event queue full, dropping %s for auction %s", event.Type, auctionID)
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.subscribers = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if !h.stopped {
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					h.leaveLocked(client)
					client.Close()
				}
			}
			h.mu.Unlock()

		case req := <-h.joinAuction:
			h.handleJoin(req)

		case client := <-h.syncState:
			h.handleSync(client)

		case event := <-h.events:
			h.broadcast(event)
		}
	}
}

// Stop gracefully shuts down the hub. It blocks until Run has exited.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

func (h *Hub) leaveLocked(client *Client) {
	if client.auctionID == nil {
		return
	}
	if subs, ok := h.subscribers[*client.auctionID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscribers, *client.auctionID)
		}
	}
	client.auctionID = nil
}

func (h *Hub) handleJoin(req *JoinAuctionRequest) {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.leaveLocked(req.Client)
	subs, ok := h.subscribers[req.AuctionID]
	if !ok {
		subs = make(map[*Client]bool)
		h.subscribers[req.AuctionID] = subs
	}
	subs[req.Client] = true
	id := req.AuctionID
	req.Client.auctionID = &id
	h.mu.Unlock()

	h.handleSync(req.Client)
}

func (h *Hub) handleSync(client *Client) {
	h.mu.RLock()
	auctionID := client.auctionID
	h.mu.RUnlock()
	if auctionID == nil || h.states == nil {
		client.sendError("NOT_SUBSCRIBED", "Join an auction first")
		return
	}

	state, err := h.states.GetState(context.Background(), *auctionID)
	if err != nil {
		log.Printf("state sync failed for auction %s: %v", auctionID, err)
		client.sendError("SYNC_FAILED", "Could not load auction state")
		return
	}
	if msg, err := NewMessage(MessageTypeStateSync, state); err == nil {
		client.Send(msg)
	}
}

func (h *Hub) broadcast(event auction.Event) {
	msgType, ok := messageTypeFor(event.Type)
	if !ok {
		return
	}
	msg, err := NewMessage(msgType, event.Payload)
	if err != nil {
		log.Printf("failed to encode event %s: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.subscribers[event.AuctionID] {
		client.Send(msg)
	}
}

func messageTypeFor(t auction.EventType) (MessageType, bool) {
	switch t {
	case auction.EventAuctionUpdated:
		return MessageTypeAuctionUpdated, true
	case auction.EventBidPlaced:
		return MessageTypeBidPlaced, true
	case auction.EventTeamUpdated:
		return MessageTypeTeamUpdated, true
	case auction.EventTimerTick:
		return MessageTypeTimerTick, true
	case auction.EventTimerExpired:
		return MessageTypeTimerExpired, true
	}
	return "", false
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister safely unregisters a client, handling the case where the
// hub may already be stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
