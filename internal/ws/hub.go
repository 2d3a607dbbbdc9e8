// Package ws pushes committed sensor snapshots to subscribed dashboard
// clients so an auto-refreshing view never has to poll.
package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/maikl88/geo-monitoring-ver3.0/internal/metrics"
)

type envelope struct {
	sensorID int
	payload  []byte
}

// Hub maintains the set of connected clients and routes snapshot messages
// to the clients subscribed to the matching sensor.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub builds an idle hub; call Run in a goroutine to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes registrations and broadcasts until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.WSClients.Inc()
			log.Printf("ws client subscribed to sensor %d (%s)", client.sensorID, client.conn.RemoteAddr())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.WSClients.Dec()
				log.Printf("ws client unsubscribed from sensor %d", client.sensorID)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.sensorID != msg.sensorID {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer; drop it rather than block the hub.
					delete(h.clients, client)
					close(client.send)
					metrics.WSClients.Dec()
				}
			}
			h.mu.Unlock()
		}
	}
}

// RegisterClient hands a new connection to the hub.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// BroadcastSnapshot fans a committed snapshot out to the sensor's
// subscribers. Marshal failures are logged and dropped.
func (h *Hub) BroadcastSnapshot(sensorID int, snapshot any) {
	payload, err := json.Marshal(map[string]any{"type": "snapshot", "payload": snapshot})
	if err != nil {
		log.Printf("ws: marshal snapshot for sensor %d: %v", sensorID, err)
		return
	}
	h.broadcast <- envelope{sensorID: sensorID, payload: payload}
}
