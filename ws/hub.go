// Package ws pushes change notifications to connected dashboard clients.
// Every successful create, edit or delete is broadcast as
// {"type": "<resource>_changed", "data": {"action": ..., "id": ...}}.
package ws

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event is one change notification.
type Event struct {
	Type string      `json:"type"`
	Data EventDetail `json:"data"`
}

type EventDetail struct {
	Action string `json:"action"`
	ID     int64  `json:"id"`
}

// Client is one websocket connection.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
	User string
}

// Hub tracks clients and fans broadcasts out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			log.Debug().Str("user", client.User).Int("clients", len(h.clients)).Msg("ws client registered")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Debug().Str("user", client.User).Int("clients", len(h.clients)).Msg("ws client unregistered")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// slow consumer
					close(client.Send)
					delete(h.clients, client)
				}
			}
		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish broadcasts a change of resource. It never blocks the caller; when
// the queue is full the event is dropped.
func (h *Hub) Publish(resource, action string, id int64) {
	if h == nil {
		return
	}
	msg, err := json.Marshal(Event{
		Type: resource + "_changed",
		Data: EventDetail{Action: action, ID: id},
	})
	if err != nil {
		log.Error().Err(err).Msg("ws: marshal event")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Warn().Str("resource", resource).Msg("ws: broadcast queue full, event dropped")
	}
}

// Clients returns the number of connected clients. Run must be serving.
func (h *Hub) Clients(ctx context.Context) int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
	case <-ctx.Done():
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-ctx.Done():
		return 0
	}
}
