package results

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Handler serves the best recorded rounds
type Handler struct {
	queries *Queries
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{queries: New(db)}
}

// HandleTopResults handles GET /api/results/top?limit=N
func (h *Handler) HandleTopResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}

	items, err := h.queries.ListTopResults(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list top results")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []SessionResult{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"results": items}); err != nil {
		log.Error().Err(err).Msg("failed to encode top results")
	}
}

// RegisterRoutes registers the results routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/results/top", h.HandleTopResults)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, strconv.ErrSyntax
	}
	return min(n, maxLimit), nil
}
