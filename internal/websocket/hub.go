// Package websocket fans post changes out to connected feed clients.
package websocket

import (
	"encoding/json"
	"sync"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/dom/qa-assessment/internal/metrics"
	"go.uber.org/zap"
)

const broadcastBuffer = 256

// Hub owns the set of feed clients. All membership changes happen on the
// Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	revoke     chan string
	broadcast  chan []byte
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopOnce   sync.Once
	log        *zap.Logger
	metrics    *metrics.Metrics
}

func NewHub(log *zap.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		revoke:     make(chan string),
		broadcast:  make(chan []byte, broadcastBuffer),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        log.Named("feed"),
		metrics:    m,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			for client := range h.clients {
				delete(h.clients, client)
				client.Close()
			}
			h.metrics.SetFeedConnections(0)
			return

		case client := <-h.register:
			h.clients[client] = true
			h.metrics.SetFeedConnections(len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
				h.metrics.SetFeedConnections(len(h.clients))
			}

		case key := <-h.revoke:
			for client := range h.clients {
				if client.sessionKey == key {
					delete(h.clients, client)
					client.Close()
				}
			}
			h.metrics.SetFeedConnections(len(h.clients))

		case data := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Slow consumer; drop it rather than stall everyone.
					delete(h.clients, client)
					client.Close()
				}
			}
			h.metrics.SetFeedConnections(len(h.clients))
		}
	}
}

// Stop disconnects every client and blocks until Run has returned.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	<-h.done
}

// Register reports false when the hub has already stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// RevokeSession disconnects every client opened with sessionKey. It returns
// once the hub has dropped them.
func (h *Hub) RevokeSession(sessionKey string) {
	select {
	case h.revoke <- sessionKey:
	case <-h.done:
	}
}

// Publish queues event for every connected client. It never blocks; when
// the queue is full the event is dropped.
func (h *Hub) Publish(event domain.PostEvent) {
	msg, err := NewMessage(MessageType(event.Type), event.Post)
	if err != nil {
		h.log.Error("failed to build feed message", zap.Error(err))
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal feed message", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.log.Warn("feed broadcast queue full, dropping event", zap.String("type", string(event.Type)))
	}
}
