package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zhouql/stockpick/internal/selection"
	"github.com/zhouql/stockpick/pkg/httputil"
	"github.com/zhouql/stockpick/pkg/logger"
)

// Notifier posts run results to a webhook. Notification failures are
// logged and swallowed; a broken chat hook must never fail a run.
type Notifier struct {
	http   *httputil.Client
	logger *logger.Logger
	url    string
}

// New builds a notifier. An empty URL yields a no-op notifier.
func New(url string, log *logger.Logger) *Notifier {
	return &Notifier{
		http:   httputil.NewWithTimeout(log, 10*time.Second),
		logger: log.WithField("module", "notify"),
		url:    url,
	}
}

type webhookPayload struct {
	Text string `json:"text"`
}

// SelectionDone posts a summary of a finished selection run.
func (n *Notifier) SelectionDone(ctx context.Context, summary *selection.Summary) {
	if n.url == "" {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stock picks for %s (%d scored, %d dropped)\n",
		summary.AnalysisDate.Format("2006-01-02"), summary.Scored, summary.Dropped)
	for _, p := range summary.Picks {
		fmt.Fprintf(&b, "%2d. %s %s  %.1f\n", p.Rank, p.Symbol, p.Name, p.TotalScore)
	}

	n.post(ctx, b.String())
}

// RunFailed posts a failure notice.
func (n *Notifier) RunFailed(ctx context.Context, jobName string, err error) {
	if n.url == "" {
		return
	}
	n.post(ctx, fmt.Sprintf("Job %s failed: %v", jobName, err))
}

func (n *Notifier) post(ctx context.Context, text string) {
	resp, err := n.http.PostJSON(ctx, n.url, webhookPayload{Text: text})
	if err != nil {
		n.logger.WithError(err).Warn("Webhook notification failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		n.logger.WithField("status", resp.StatusCode).Warn("Webhook rejected notification")
	}
}
