package gateway

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/rs/zerolog/log"
)

// Service bundles the WebSocket, state and RPC surfaces of the game server
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
	rpcPath           string
	rpcHandler        http.Handler
}

// Config holds configuration for the gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
	RPCOptions       []connect.HandlerOption
}

// DefaultConfig returns default configuration for the gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
	}
}

// NewService creates a new gateway service in front of the session owner
func NewService(config Config, intents Intents) *Service {
	connectionManager := NewConnectionManager(config.ConnectionConfig, intents)
	rpcPath, rpcHandler := NewSessionServiceHandler(intents, config.RPCOptions...)

	return &Service{
		connectionManager: connectionManager,
		wsHandler:         NewWebSocketHandler(connectionManager),
		stateHandler:      NewStateHandler(intents),
		rpcPath:           rpcPath,
		rpcHandler:        rpcHandler,
	}
}

// Broadcaster returns the publisher that pushes session events to WebSocket clients
func (s *Service) Broadcaster() *ConnectionManager {
	return s.connectionManager
}

// Start runs the connection manager until ctx is cancelled
func (s *Service) Start(ctx context.Context) {
	log.Info().Msg("starting gateway service")
	s.connectionManager.Start(ctx)
	log.Info().Msg("gateway service stopped")
}

// RegisterRoutes registers the WebSocket, state and RPC routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.stateHandler.RegisterStateRoutes(mux)
	mux.Handle(s.rpcPath, s.rpcHandler)
	log.Info().Str("rpc_path", s.rpcPath).Msg("gateway routes registered")
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() map[string]interface{} {
	stats := s.connectionManager.GetConnectionStats()
	stats["service"] = "grill_gateway"
	return stats
}
