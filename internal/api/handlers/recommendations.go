package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/zhouql/stockpick/internal/review"
	"github.com/zhouql/stockpick/internal/selection"
	"github.com/zhouql/stockpick/pkg/logger"
)

// RecommendationHandler serves stored recommendation snapshots and
// their reviews.
type RecommendationHandler struct {
	repo     *selection.Repository
	reviewer *review.Reviewer
	logger   *logger.Logger
}

// NewRecommendationHandler creates a recommendation handler.
func NewRecommendationHandler(repo *selection.Repository, reviewer *review.Reviewer, log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		repo:     repo,
		reviewer: reviewer,
		logger:   log,
	}
}

// Latest returns the newest snapshot.
// GET /api/recommendations/latest
func (h *RecommendationHandler) Latest(w http.ResponseWriter, r *http.Request) {
	runDate, recs, err := h.repo.Latest(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest recommendations")
		respondError(w, http.StatusInternalServerError, "Failed to load recommendations")
		return
	}
	if runDate.IsZero() {
		respondError(w, http.StatusNotFound, "No recommendations stored yet")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_date":        runDate.Format("2006-01-02"),
		"recommendations": recs,
	})
}

// ByDate returns the snapshot for one run date.
// GET /api/recommendations/{date}
func (h *RecommendationHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	runDate, ok := parseDate(w, r)
	if !ok {
		return
	}

	recs, err := h.repo.ByDate(r.Context(), runDate)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load recommendations")
		respondError(w, http.StatusInternalServerError, "Failed to load recommendations")
		return
	}
	if len(recs) == 0 {
		respondError(w, http.StatusNotFound, "No recommendations for that date")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_date":        runDate.Format("2006-01-02"),
		"recommendations": recs,
	})
}

// Dates lists stored run dates, newest first.
// GET /api/recommendations/dates
func (h *RecommendationHandler) Dates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.repo.RunDates(r.Context(), 60)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list run dates")
		respondError(w, http.StatusInternalServerError, "Failed to list run dates")
		return
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"dates": out})
}

// Review returns the performance review of one run date.
// GET /api/review/{date}
func (h *RecommendationHandler) Review(w http.ResponseWriter, r *http.Request) {
	runDate, ok := parseDate(w, r)
	if !ok {
		return
	}

	report, err := h.reviewer.Review(r.Context(), runDate)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func parseDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := mux.Vars(r)["date"]
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}
