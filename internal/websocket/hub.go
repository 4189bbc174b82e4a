package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"support-chat-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const clusterChannel = "chat_cluster_events"

// Envelope is the frame pushed to websocket subscribers. Data is always a
// full snapshot (transcript, session list), never a delta.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans out session snapshots to subscribers. Subscriptions are keyed by
// topic string: "session:<id>" for a live transcript, "index" for the admin
// session list, "client:<id>" for a visitor still in bot mode.
type Hub struct {
	// topic -> connected clients (an admin console and a visitor widget can
	// watch the same session at once)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out; nil means single node.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			for _, topic := range client.Topics {
				h.clients[topic] = append(h.clients[topic], client)
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"topics": client.Topics})

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeClient(client)
			h.mu.Unlock()
		}
	}
}

// removeClient detaches a client from all of its topics. Caller holds mu.
func (h *Hub) removeClient(client *Client) {
	removed := false
	for _, topic := range client.Topics {
		clients, ok := h.clients[topic]
		if !ok {
			continue
		}
		for i, c := range clients {
			if c == client {
				h.clients[topic] = append(clients[:i], clients[i+1:]...)
				removed = true
				break
			}
		}
		if len(h.clients[topic]) == 0 {
			delete(h.clients, topic)
		}
	}
	if removed {
		close(client.Send)
		h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"topics": client.Topics})
	}
}

// Publish delivers an envelope to every subscriber of the topic, locally and
// on other instances via Redis.
func (h *Hub) Publish(topic string, envelope Envelope) {
	data, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal envelope", map[string]interface{}{"error": err.Error()})
		return
	}

	h.publishLocal(topic, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"topic":   topic,
			"message": json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
	}
}

// Broadcast delivers an envelope to every connected client regardless of
// topic; used for the global widget enable/disable switch.
func (h *Hub) Broadcast(envelope Envelope) {
	data, err := json.Marshal(envelope)
	if err != nil {
		return
	}

	h.mu.RLock()
	seen := make(map[*Client]bool)
	for _, clients := range h.clients {
		for _, client := range clients {
			if seen[client] {
				continue
			}
			seen[client] = true
			h.send(client, data)
		}
	}
	h.mu.RUnlock()

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"topic":   "*",
			"message": json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
	}
}

func (h *Hub) publishLocal(topic string, data []byte) {
	h.mu.RLock()
	clients := h.clients[topic]
	for _, client := range clients {
		h.send(client, data)
	}
	h.mu.RUnlock()
}

// send pushes to the client buffer; a full buffer drops the client rather
// than blocking the hub.
func (h *Hub) send(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		h.logger.Warn("Hub", "Client send buffer full, dropping client", map[string]interface{}{"topics": client.Topics})
		go func() { h.unregister <- client }()
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Topic   string          `json:"topic"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Cluster message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}

		if payload.Topic == "*" {
			h.mu.RLock()
			seen := make(map[*Client]bool)
			for _, clients := range h.clients {
				for _, client := range clients {
					if !seen[client] {
						seen[client] = true
						h.send(client, payload.Message)
					}
				}
			}
			h.mu.RUnlock()
			continue
		}

		h.publishLocal(payload.Topic, payload.Message)
	}
}
