package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgConnected      MessageType = "connected"
	MsgInsightCreated MessageType = "insight_created"
)

// AllAccounts subscribes a connection to every account's events.
const AllAccounts int64 = 0

const sendBuffer = 256

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection is one subscriber of the live feed.
type Connection struct {
	AccountID int64
	Send      chan []byte
}

// NewConnection creates a subscriber for accountID, or AllAccounts.
func NewConnection(accountID int64) *Connection {
	return &Connection{
		AccountID: accountID,
		Send:      make(chan []byte, sendBuffer),
	}
}

type broadcastMessage struct {
	accountID int64
	data      []byte
}

// Hub fans insight events out to subscribers of one account and to
// subscribers of all accounts. Slow subscribers miss messages rather than
// block the hub.
type Hub struct {
	// accountID -> connections; AllAccounts holds the firehose subscribers
	subscribers map[int64]map[*Connection]struct{}

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *broadcastMessage
	done       chan struct{}
	stopOnce   sync.Once
	stopped    chan struct{}

	logger *slog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	h := &Hub{
		subscribers: make(map[int64]map[*Connection]struct{}),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *broadcastMessage, sendBuffer),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
		logger:      logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.stopped)
	for {
		select {
		case conn := <-h.register:
			if h.subscribers[conn.AccountID] == nil {
				h.subscribers[conn.AccountID] = make(map[*Connection]struct{})
			}
			h.subscribers[conn.AccountID][conn] = struct{}{}
			h.logger.Debug("live subscriber connected", "account_id", conn.AccountID)

		case conn := <-h.unregister:
			if conns, ok := h.subscribers[conn.AccountID]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.subscribers, conn.AccountID)
					}
					h.logger.Debug("live subscriber disconnected", "account_id", conn.AccountID)
				}
			}

		case msg := <-h.broadcast:
			h.deliver(h.subscribers[msg.accountID], msg.data)
			if msg.accountID != AllAccounts {
				h.deliver(h.subscribers[AllAccounts], msg.data)
			}

		case <-h.done:
			for _, conns := range h.subscribers {
				for conn := range conns {
					close(conn.Send)
				}
			}
			h.subscribers = nil
			return
		}
	}
}

func (h *Hub) deliver(conns map[*Connection]struct{}, data []byte) {
	for conn := range conns {
		select {
		case conn.Send <- data:
		default:
			// Drop message if buffer full
		}
	}
}

// Register adds a connection. It reports false once the hub is closed.
func (h *Hub) Register(conn *Connection) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// BroadcastToAccount sends an event to the account's subscribers and to
// all-account subscribers (implements service.Broadcaster)
func (h *Hub) BroadcastToAccount(accountID int64, msgType string, payload any) {
	data, err := encode(MessageType(msgType), payload)
	if err != nil {
		h.logger.Error("encode live event", "type", msgType, "error", err)
		return
	}
	select {
	case h.broadcast <- &broadcastMessage{accountID: accountID, data: data}:
	case <-h.done:
	}
}

// Close disconnects every subscriber and stops the hub.
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.done) })
	<-h.stopped
}

func encode(msgType MessageType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: msgType, Payload: raw})
}
