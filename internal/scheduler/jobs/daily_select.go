package jobs

import (
	"context"

	"github.com/zhouql/stockpick/internal/notify"
	"github.com/zhouql/stockpick/internal/selection"
	"github.com/zhouql/stockpick/pkg/logger"
)

// DailySelectJob runs the selection pipeline after the market close
// and pushes the picks to the webhook.
type DailySelectJob struct {
	selector *selection.Selector
	notifier *notify.Notifier
	logger   *logger.Logger
}

// NewDailySelectJob creates the daily selection job.
func NewDailySelectJob(selector *selection.Selector, notifier *notify.Notifier, log *logger.Logger) *DailySelectJob {
	return &DailySelectJob{
		selector: selector,
		notifier: notifier,
		logger:   log,
	}
}

func (j *DailySelectJob) Name() string {
	return "daily_select"
}

// Schedule runs at 15:30 CST on weekdays, half an hour after the
// close so the vendor has settled its end-of-day data.
func (j *DailySelectJob) Schedule() string {
	return "0 30 15 * * MON-FRI"
}

func (j *DailySelectJob) Run(ctx context.Context) error {
	summary, err := j.selector.Run(ctx)
	if err != nil {
		j.notifier.RunFailed(ctx, j.Name(), err)
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"analysis_date": summary.AnalysisDate.Format("2006-01-02"),
		"picks":         len(summary.Picks),
	}).Info("Daily selection finished")

	j.notifier.SelectionDone(ctx, summary)
	return nil
}
