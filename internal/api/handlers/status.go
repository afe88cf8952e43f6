package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/zhouql/stockpick/internal/cache"
	"github.com/zhouql/stockpick/pkg/database"
	"github.com/zhouql/stockpick/pkg/logger"
)

// StatusHandler reports cache and database health.
type StatusHandler struct {
	store  *cache.Store
	db     *database.DB
	logger *logger.Logger
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(store *cache.Store, db *database.DB, log *logger.Logger) *StatusHandler {
	return &StatusHandler{
		store:  store,
		db:     db,
		logger: log,
	}
}

// CacheStatus returns per-type row counts and connection pool stats.
// GET /api/cache/status
func (h *StatusHandler) CacheStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts := make(map[string]int64, len(cache.AllTypes))
	for _, dt := range cache.AllTypes {
		n, err := h.store.CountRows(ctx, dt)
		if err != nil {
			h.logger.WithError(err).Error("Failed to count cache rows")
			respondError(w, http.StatusInternalServerError, "Failed to read cache status")
			return
		}
		counts[string(dt)] = n
	}

	pool, err := h.db.HealthCheck(ctx)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "Database unreachable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rows": counts,
		"pool": pool,
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
