package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/gimgrill/go/internal/grill/events"
	"github.com/rs/zerolog/log"
)

// ConnectionManager manages WebSocket connections watching the session.
// It is also a publisher: every session event is broadcast to all clients.
type ConnectionManager struct {
	connections map[*Connection]bool
	mu          sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	intents  Intents

	broadcastCh chan broadcast

	// ctx is the lifetime of the manager; intents read from clients run under it
	ctx   context.Context
	ctxMu sync.RWMutex
}

// broadcast is an encoded envelope tagged with its snapshot version
type broadcast struct {
	version uint64
	data    []byte
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time

	// lastVersion is the newest snapshot version queued to this client.
	// Written under cm.mu: exclusively at registration, by the hub otherwise.
	lastVersion uint64
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	IntentTimeout   time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		IntentTimeout:   5 * time.Second,
		MaxMessageSize:  1024, // intents are tiny
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig, intents Intents) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		intents:     intents,
		broadcastCh: make(chan broadcast, 256),
		ctx:         context.Background(),
	}
}

// Start processes broadcast messages until ctx is cancelled
func (cm *ConnectionManager) Start(ctx context.Context) {
	cm.ctxMu.Lock()
	cm.ctx = ctx
	cm.ctxMu.Unlock()

	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			cm.closeAll()
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// Publish queues a session event for every connected client
func (cm *ConnectionManager) Publish(ctx context.Context, env events.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event for broadcast: %w", err)
	}

	select {
	case cm.broadcastCh <- broadcast{version: env.Snapshot.Version, data: data}:
		return nil
	default:
		log.Warn().Str("event_type", string(env.Type)).Msg("broadcast channel full, dropping message")
		return nil
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	now := time.Now()
	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, 64),
		Manager:     cm,
		ConnectedAt: now,
	}

	if err := cm.registerConnection(connection); err != nil {
		log.Error().Err(err).Str("connection_id", connection.ID).Msg("failed to queue initial snapshot")
	}

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection established")

	return nil
}

func (cm *ConnectionManager) baseContext() context.Context {
	cm.ctxMu.RLock()
	defer cm.ctxMu.RUnlock()
	return cm.ctx
}

// registerConnection adds conn and queues the current state as its first
// message. Both happen under the write lock, so every broadcast either lands
// before the snapshot (and is skipped as stale) or after it.
func (cm *ConnectionManager) registerConnection(conn *Connection) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[conn] = true
	err := conn.queueSnapshot()

	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
	return err
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.connections[conn]; exists {
		delete(cm.connections, conn)
		close(conn.Send)

		log.Info().
			Str("connection_id", conn.ID).
			Msg("connection unregistered")
	}
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.RLock()
	targets := make([]*Connection, 0, len(cm.connections))
	for conn := range cm.connections {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range targets {
		cm.unregisterConnection(conn)
	}
}

func (cm *ConnectionManager) handleBroadcast(message broadcast) {
	// Sends never block, so the read lock is held for the whole fan-out.
	// That keeps unregisterConnection from closing a Send channel mid-send.
	var slow []*Connection
	stale := 0
	cm.mu.RLock()
	for conn := range cm.connections {
		if message.version <= conn.lastVersion {
			stale++
			continue
		}
		select {
		case conn.Send <- message.data:
			conn.lastVersion = message.version
		default:
			slow = append(slow, conn)
		}
	}
	count := len(cm.connections)
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}

	log.Debug().
		Int("connections", count).
		Int("dropped", len(slow)).
		Int("stale", stale).
		Msg("event broadcasted")
}

// ConnectionCount returns the number of connected clients
func (cm *ConnectionManager) ConnectionCount() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() map[string]interface{} {
	cm.mu.RLock()
	clients := make([]map[string]interface{}, 0, len(cm.connections))
	for conn := range cm.connections {
		clients = append(clients, map[string]interface{}{
			"id":           conn.ID,
			"connected_at": conn.ConnectedAt,
		})
	}
	cm.mu.RUnlock()

	return map[string]interface{}{
		"total_connections": len(clients),
		"queued_broadcasts": len(cm.broadcastCh),
		"clients":           clients,
	}
}

// queueSnapshot must run with cm.mu held for writing
func (c *Connection) queueSnapshot() error {
	snap := c.Manager.intents.Snapshot()
	env, err := events.NewEnvelope(events.EventTypeSnapshot, snap, time.Now(), nil)
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	// Send is fresh and buffered, so this never blocks
	c.Send <- data
	c.lastVersion = snap.Version
	return nil
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				c.Manager.unregisterConnection(c)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				c.Manager.unregisterConnection(c)
				return
			}
		}
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

// handleClientMessage applies an intent sent by the client. Bad messages are
// logged and dropped; the session only changes through valid intents.
func (c *Connection) handleClientMessage(message []byte) {
	intent, err := DecodeIntent(message)
	if err != nil {
		log.Warn().
			Err(err).
			Str("connection_id", c.ID).
			Msg("ignoring malformed client message")
		return
	}

	ctx, cancel := context.WithTimeout(c.Manager.baseContext(), c.Manager.config.IntentTimeout)
	defer cancel()

	log.Debug().
		Str("connection_id", c.ID).
		Str("intent", string(intent.Type)).
		Msg("applying client intent")

	ApplyIntent(ctx, c.Manager.intents, intent)
}
