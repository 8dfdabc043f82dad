package hub

import (
	"context"
	"sort"
	"sync"

	logger "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Logger"
	rftmodels "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Models"
)

// Message types pushed to observers.
const (
	MessageTypeScan         = "scan"
	MessageTypeStatusChange = "status_change"
)

// Message is one real-time notification.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of live observers and fans notifications out to them.
// Delivery is best-effort, at-most-once: each observer has a bounded queue,
// and an observer whose queue is full is dropped instead of applying
// backpressure to ingestion. Publishing never blocks the caller.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
	log        *logger.Logger
}

// NewHub creates a hub. Run must be started before clients are registered.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client, 16),
		Unregister: make(chan *Client, 16),
		log:        log.WithComponent("hub"),
	}
}

// Run drives registration, unregistration and fan-out until ctx is canceled,
// then closes every remaining observer and returns ctx.Err().
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return ctx.Err()

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.log.WithField("total_clients", total).Info("observer connected")

		case client := <-h.Unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// PublishSighting enqueues a scan notification for every observer.
func (h *Hub) PublishSighting(event rftmodels.ScanEvent) {
	h.publish(Message{Type: MessageTypeScan, Data: event})
}

// PublishTransition enqueues a status-change notification for every observer.
func (h *Hub) PublishTransition(transition rftmodels.Transition) {
	h.publish(Message{Type: MessageTypeStatusChange, Data: transition})
}

func (h *Hub) publish(message Message) {
	select {
	case h.broadcast <- message:
	default:
		h.log.WithField("message_type", message.Type).Warn("broadcast channel full, dropping message")
	}
}

// broadcastToClients delivers one message to a snapshot of the registry. The
// registry lock is not held during delivery; sends are non-blocking and a
// full observer queue marks that observer for removal.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	// Stable delivery order keeps tests reproducible.
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			h.log.WithField("client_id", client.id).Warn("observer queue full, dropping connection")
			h.remove(client)
		}
	}
}

// remove unregisters a client and closes its queue. Idempotent.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.log.WithField("total_clients", total).Info("observer disconnected")
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	count := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()
	h.log.WithField("clients_closed", count).Info("broadcast hub stopped")
}

// ClientCount returns the number of registered observers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
