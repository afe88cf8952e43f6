package selection

import (
	"context"
	"time"

	"github.com/zhouql/stockpick/internal/cache"
)

// Repository persists and serves recommendation snapshots. One
// snapshot per run date; a rerun replaces it.
type Repository struct {
	store *cache.Store
}

// NewRepository builds a repository over the cache store.
func NewRepository(store *cache.Store) *Repository {
	return &Repository{store: store}
}

// SaveSnapshot stores a run's picks under its analysis date.
func (r *Repository) SaveSnapshot(ctx context.Context, runDate time.Time, picks []cache.Recommendation) error {
	return r.store.SaveRecommendations(ctx, runDate, picks)
}

// ByDate returns the snapshot for one run date.
func (r *Repository) ByDate(ctx context.Context, runDate time.Time) ([]cache.Recommendation, error) {
	return r.store.GetRecommendations(ctx, runDate)
}

// Latest returns the newest snapshot and its run date. An empty slice
// with a zero date means no run has been stored yet.
func (r *Repository) Latest(ctx context.Context) (time.Time, []cache.Recommendation, error) {
	runDate, err := r.store.LatestRunDate(ctx)
	if err != nil {
		return time.Time{}, nil, err
	}
	if runDate.IsZero() {
		return time.Time{}, nil, nil
	}
	recs, err := r.store.GetRecommendations(ctx, runDate)
	return runDate, recs, err
}

// RunDates lists stored run dates, newest first.
func (r *Repository) RunDates(ctx context.Context, limit int) ([]time.Time, error) {
	return r.store.RunDates(ctx, limit)
}
