package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/grpcreflect"
	"github.com/mcdev12/gimgrill/go/internal/grill/gateway"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func setupServer(services *Services, port string) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	// WebSocket, state and Connect RPC routes
	services.Gateway.RegisterRoutes(mux)

	if services.Results != nil {
		services.Results.RegisterRoutes(mux)
	}

	// Setup reflection for grpcui/grpcurl
	setupReflection(mux)

	setupHealthCheck(mux)
	setupInfo(mux, services)

	// Wrap with CORS
	handler := c.Handler(mux)

	// h2c lets Connect clients speak HTTP/2 without TLS
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func setupReflection(mux *http.ServeMux) {
	if _, err := gateway.SessionServiceDescriptor(); err != nil {
		log.Error().Err(err).Msg("session service descriptor unavailable, reflection disabled")
		return
	}
	reflector := grpcreflect.NewStaticReflector(gateway.SessionServiceName)
	mux.Handle(grpcreflect.NewHandlerV1(reflector))
	mux.Handle(grpcreflect.NewHandlerV1Alpha(reflector))
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}

func setupInfo(mux *http.ServeMux, services *Services) {
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		stats := services.Gateway.GetStats()
		snap := services.Orchestrator.Snapshot()

		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(map[string]interface{}{
			"service":     "gimgrill",
			"version":     "1.0.0",
			"connections": stats["total_connections"],
			"session_id":  snap.SessionID,
			"is_playing":  snap.IsRunning,
			"results":     services.Results != nil,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to encode info response")
		}
	})
}
