package jobs

import (
	"context"

	"github.com/zhouql/stockpick/internal/cache"
	"github.com/zhouql/stockpick/pkg/logger"
)

// CleanupJob reclaims space from stale snapshot rows and dead time
// series.
type CleanupJob struct {
	store  *cache.Store
	logger *logger.Logger
}

// NewCleanupJob creates the weekly cache cleanup job.
func NewCleanupJob(store *cache.Store, log *logger.Logger) *CleanupJob {
	return &CleanupJob{
		store:  store,
		logger: log,
	}
}

func (j *CleanupJob) Name() string {
	return "cache_cleanup"
}

// Schedule runs Sunday mornings, well outside any trading session.
func (j *CleanupJob) Schedule() string {
	return "0 0 6 * * SUN"
}

func (j *CleanupJob) Run(ctx context.Context) error {
	removed, err := j.store.Cleanup(ctx)
	if err != nil {
		return err
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Cache cleanup completed")
	}
	return nil
}
