package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/mcdev12/gimgrill/go/internal/grill"
	"github.com/rs/zerolog/log"
)

// StateResponse is the body of GET /api/session/state
type StateResponse struct {
	grill.Snapshot
	ShowSummary bool `json:"show_summary"`
}

// StateHandler serves the current session snapshot over plain HTTP
type StateHandler struct {
	intents Intents
}

// NewStateHandler creates a new state handler
func NewStateHandler(intents Intents) *StateHandler {
	return &StateHandler{intents: intents}
}

// HandleGetState handles GET /api/session/state
func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.intents.Snapshot()
	resp := StateResponse{Snapshot: snap, ShowSummary: snap.ShowSummary()}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to encode session state response")
	}
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/session/state", h.HandleGetState)
}
