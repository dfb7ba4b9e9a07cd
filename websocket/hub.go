package websocket

import (
	"log"
	"sync"

	"tubegrab/types"
)

// allJobsKey is the multiplex key for observers that watch every job.
const allJobsKey = "all"

// Hub interface defines the methods for managing WebSocket observers
type Hub interface {
	Run()
	Publish(msg types.ProgressMessage)
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
}

// hub maintains the set of active observers and fans published events out to
// them. Delivery to one observer never blocks delivery to another: each
// client has a bounded send channel, and a client whose channel overflows is
// dropped on the spot. Observers registered after an event was published do
// not receive it.
type hub struct {
	// Registered clients mapped by job ID ("all" multiplexes every job)
	clients map[string]map[*Client]bool

	// Intake channel for published events
	broadcast chan types.ProgressMessage

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for thread-safe operations
	mu sync.Mutex
}

// NewHub creates a new WebSocket hub
func NewHub() Hub {
	return &hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan types.ProgressMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main event loop
func (h *hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.jobID] == nil {
				h.clients[client.jobID] = make(map[*Client]bool)
			}
			h.clients[client.jobID][client] = true
			h.mu.Unlock()
			log.Printf("WebSocket client connected for job %s", client.jobID)

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeClient(client)
			h.mu.Unlock()
			log.Printf("WebSocket client disconnected for job %s", client.jobID)

		case message := <-h.broadcast:
			h.mu.Lock()
			h.deliver(h.clients[message.JobID], message)
			h.deliver(h.clients[allJobsKey], message)
			h.mu.Unlock()
		}
	}
}

// deliver pushes a message to every client in one observer set without ever
// blocking. A client whose send buffer is full is closed and removed; the
// rest of the set is unaffected.
func (h *hub) deliver(clients map[*Client]bool, message types.ProgressMessage) {
	for client := range clients {
		select {
		case client.send <- message:
		default:
			log.Printf("WebSocket client for job %s too slow, dropping it", client.jobID)
			h.removeClient(client)
		}
	}
}

// removeClient detaches a client if it is still registered. Safe to call for
// a client that was already removed. Caller holds h.mu.
func (h *hub) removeClient(client *Client) {
	clients, ok := h.clients[client.jobID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.jobID)
	}
}

// Publish hands an event to the hub for fan-out. The hub loop itself never
// blocks on an observer, so this send completes promptly; terminal events
// are never silently dropped on the way in.
func (h *hub) Publish(msg types.ProgressMessage) {
	h.broadcast <- msg
}

// RegisterClient registers a new client with the hub
func (h *hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client from the hub. Idempotent.
func (h *hub) UnregisterClient(client *Client) {
	h.unregister <- client
}
