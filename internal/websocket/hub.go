package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/heroual/MTSAV/internal/metrics"
	"github.com/heroual/MTSAV/internal/types"
	"github.com/rs/zerolog"
)

// Snapshotter computes the dashboard view for one filter selection
type Snapshotter interface {
	Snapshot(fs types.FilterState) (*types.Snapshot, error)
}

// Hub maintains the set of active dashboards and pushes each one the
// snapshot matching its own filters
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex to protect clients map
	mu sync.RWMutex

	// Closed when Run returns
	done     chan struct{}
	doneOnce sync.Once

	snapshots Snapshotter
	logger    zerolog.Logger
}

// NewHub creates a new Hub
func NewHub(snapshots Snapshotter, logger zerolog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		snapshots:  snapshots,
		logger:     logger.With().Str("component", "hub").Logger(),
	}
}

// Run starts the hub's main loop. Cancelling ctx disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	m := metrics.Get()
	for {
		select {
		case <-ctx.Done():
			h.doneOnce.Do(func() { close(h.done) })
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
				m.RecordWebSocketDisconnect()
			}
			h.mu.Unlock()
			h.logger.Info().Msg("hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			m.RecordWebSocketConnect()
			h.logger.Info().
				Str("client_id", client.id).
				Int("total_clients", total).
				Msg("client connected")

			// first view uses the default filters
			h.SendTo(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				m.RecordWebSocketDisconnect()
				h.logger.Info().
					Str("client_id", client.id).
					Int("total_clients", len(h.clients)).
					Msg("client disconnected")
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Refresh recomputes and sends a snapshot to every client, sharing the
// work between clients with identical filters. It returns the number of
// snapshots queued.
func (h *Hub) Refresh() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	cache := make(map[string][]byte)
	sent := 0
	for client := range h.clients {
		fs := client.Filters()
		key, err := json.Marshal(fs)
		if err != nil {
			continue
		}

		data, ok := cache[string(key)]
		if !ok {
			data = h.render(fs)
			cache[string(key)] = data
		}
		if h.deliver(client, data) {
			sent++
		}
	}
	return sent
}

// SendTo pushes a fresh snapshot to a single client
func (h *Hub) SendTo(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return false
	}
	return h.deliver(client, h.render(client.Filters()))
}

// render builds the snapshot message, or an error message when the
// snapshot cannot be computed
func (h *Hub) render(fs types.FilterState) []byte {
	msg := types.ServerMessage{Type: types.MsgTypeSnapshot}

	snap, err := h.snapshots.Snapshot(fs)
	if err == nil {
		msg.Data, err = json.Marshal(snap)
	}
	if err != nil {
		metrics.Get().RecordAggregationError()
		h.logger.Warn().Err(err).Msg("failed to build snapshot")
		msg = types.ServerMessage{Type: types.MsgTypeError, Err: err.Error()}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal server message")
		return nil
	}
	return data
}

// deliver queues data on the client. A full buffer drops the client.
// Callers hold h.mu.
func (h *Hub) deliver(client *Client, data []byte) bool {
	if data == nil {
		return false
	}
	select {
	case client.send <- data:
		metrics.Get().RecordWebSocketMessage()
		return true
	default:
		// Client's send buffer is full, close and remove it
		close(client.send)
		delete(h.clients, client)
		metrics.Get().RecordWebSocketDisconnect()
		metrics.Get().RecordWebSocketError()
		h.logger.Warn().
			Str("client_id", client.id).
			Msg("client send buffer full, closing connection")
		return false
	}
}
