package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/heroual/MTSAV/internal/auth"
	"github.com/heroual/MTSAV/internal/config"
	"github.com/heroual/MTSAV/internal/filter"
	"github.com/heroual/MTSAV/internal/types"
	"github.com/rs/zerolog"
)

// Client is a middleman between the websocket connection and the hub
type Client struct {
	// Unique client ID
	id string

	// The hub this client belongs to
	hub *Hub

	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	send chan []byte

	// Configuration
	config *config.Config

	// Logger
	logger zerolog.Logger

	// Authenticated user, nil when auth is skipped upstream
	claims *auth.Claims

	// Active dashboard filters
	mu      sync.RWMutex
	filters types.FilterState
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, cfg *config.Config, logger zerolog.Logger, claims *auth.Claims) *Client {
	clientID := uuid.New().String()
	fs, _ := filter.Normalize(types.FilterState{})
	l := logger.With().Str("client_id", clientID)
	if claims != nil {
		l = l.Str("user", claims.Email)
	}
	return &Client{
		id:      clientID,
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 16),
		config:  cfg,
		logger:  l.Logger(),
		claims:  claims,
		filters: fs,
	}
}

// Filters returns the client's current filter selection
func (c *Client) Filters() types.FilterState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filters
}

func (c *Client) setFilters(fs types.FilterState) {
	c.mu.Lock()
	c.filters = fs
	c.mu.Unlock()
}

// readPump pumps messages from the websocket connection to the hub
//
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error().Err(err).Msg("websocket read error")
			}
			break
		}
		c.handleMessage(message)
	}
}

// handleMessage applies a filter change and answers with a fresh snapshot
func (c *Client) handleMessage(message []byte) {
	var msg types.ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Debug().Err(err).Msg("failed to parse client message")
		c.reply(types.ServerMessage{Type: types.MsgTypeError, Err: "message invalide"})
		return
	}

	switch msg.Type {
	case types.MsgTypeFilters:
		fs, err := filter.Normalize(msg.Filters)
		if err != nil {
			c.reply(types.ServerMessage{Type: types.MsgTypeError, Err: err.Error()})
			return
		}
		c.setFilters(fs)
		c.logger.Debug().Str("sla", string(fs.StatusSLA)).Str("q", fs.SearchQuery).Msg("filters updated")
		c.hub.SendTo(c)

	default:
		c.logger.Debug().Str("type", msg.Type).Msg("ignoring unknown message type")
	}
}

// reply queues a message for this client only, if it is still registered
func (c *Client) reply(msg types.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if c.hub.clients[c] {
		c.hub.deliver(c, data)
	}
}

// writePump pumps messages from the hub to the websocket connection
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// one JSON document per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start starts the client's read and write pumps
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
