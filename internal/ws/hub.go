package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/citysafe/inspection-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisPubSubChannel = "inspection:notifications"

// Event types pushed to clients
const (
	EventNotification = "notification"
	EventUnreadCount  = "unread_count"
)

// Event represents a real-time notification event sent via WebSocket
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub manages WebSocket clients and delivers events per user
type Hub struct {
	// Registered clients grouped by user ID
	clients map[uint64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *targetedEvent

	mu          sync.RWMutex
	instanceID  string
	redisClient *redis.Client
	ctx         context.Context
	cancel      context.CancelFunc
}

type targetedEvent struct {
	UserID uint64 `json:"user_id"`
	Event  *Event `json:"event"`
	Origin string `json:"origin,omitempty"`
}

// NewHub creates a new Hub; redisClient may be nil for a single instance
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[uint64]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *targetedEvent, 256),
		instanceID:  uuid.NewString(),
		redisClient: redisClient,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Event)
			if err != nil {
				logger.GetLogger().Warn().Err(err).Msg("ws: marshal event")
				continue
			}
			h.mu.Lock()
			for client := range h.clients[msg.UserID] {
				select {
				case client.send <- data:
				default:
					// slow consumer
					h.remove(client)
				}
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			return
		}
	}
}

// remove must be called with mu held
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
}

// Connected reports how many sockets the user currently holds on this instance
func (h *Hub) Connected(userID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// SendToUser delivers an event locally and publishes it for other instances.
// Events are dropped when the local queue is full.
func (h *Hub) SendToUser(userID uint64, event *Event) {
	h.enqueue(&targetedEvent{UserID: userID, Event: event})

	if h.redisClient != nil {
		data, err := json.Marshal(&targetedEvent{UserID: userID, Event: event, Origin: h.instanceID})
		if err == nil {
			if err := h.redisClient.Publish(h.ctx, redisPubSubChannel, data).Err(); err != nil {
				logger.GetLogger().Warn().Err(err).Uint64("user_id", userID).Msg("ws: publish event")
			}
		}
	}
}

func (h *Hub) enqueue(ev *targetedEvent) {
	select {
	case h.broadcast <- ev:
	default:
		logger.GetLogger().Warn().Uint64("user_id", ev.UserID).Msg("ws: broadcast queue full, event dropped")
	}
}

// subscribeRedis listens for events published by other instances
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev targetedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil || ev.Origin == h.instanceID {
				continue
			}
			// local only, never re-published
			h.enqueue(&ev)
		case <-h.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.cancel()
}
