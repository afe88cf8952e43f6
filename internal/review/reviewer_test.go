package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouql/stockpick/internal/cache"
	"github.com/zhouql/stockpick/internal/selection"
	"github.com/zhouql/stockpick/pkg/database"
	"github.com/zhouql/stockpick/pkg/logger"
)

func newTestReviewer(t *testing.T) (*Reviewer, *cache.Store, *selection.Repository) {
	t.Helper()
	db, err := database.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := cache.New(db, logger.NewNop())
	require.NoError(t, err)
	repo := selection.NewRepository(store)
	return New(store, repo, logger.NewNop()), store, repo
}

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func TestReviewComputesReturns(t *testing.T) {
	reviewer, store, repo := newTestReviewer(t)
	ctx := context.Background()

	runDate := day(10)
	require.NoError(t, repo.SaveSnapshot(ctx, runDate, []cache.Recommendation{
		{RunDate: runDate, Symbol: "600000.SH", Name: "浦发银行", Rank: 1, TotalScore: 81.75},
		{RunDate: runDate, Symbol: "000001.SZ", Name: "平安银行", Rank: 2, TotalScore: 70.0},
	}))

	// 600000.SH went from 10 to 11, 000001.SZ from 8 to 7.6.
	require.NoError(t, store.SaveKlines(ctx, []cache.Kline{
		{Symbol: "600000.SH", Period: cache.PeriodDaily, Date: day(10), Close: 10},
		{Symbol: "600000.SH", Period: cache.PeriodDaily, Date: day(11), Close: 10.5},
		{Symbol: "600000.SH", Period: cache.PeriodDaily, Date: day(12), Close: 11},
	}))
	require.NoError(t, store.SaveKlines(ctx, []cache.Kline{
		{Symbol: "000001.SZ", Period: cache.PeriodDaily, Date: day(10), Close: 8},
		{Symbol: "000001.SZ", Period: cache.PeriodDaily, Date: day(12), Close: 7.6},
	}))

	report, err := reviewer.Review(ctx, runDate)
	require.NoError(t, err)
	require.Len(t, report.Picks, 2)

	require.NotNil(t, report.Picks[0].ReturnPct)
	assert.InDelta(t, 10.0, *report.Picks[0].ReturnPct, 1e-9)
	require.NotNil(t, report.Picks[1].ReturnPct)
	assert.InDelta(t, -5.0, *report.Picks[1].ReturnPct, 1e-9)

	assert.Equal(t, 1, report.Winners)
	assert.Equal(t, 1, report.Losers)
	require.NotNil(t, report.AvgReturn)
	assert.InDelta(t, 2.5, *report.AvgReturn, 1e-9)
}

func TestReviewPickWithoutSubsequentBars(t *testing.T) {
	reviewer, store, repo := newTestReviewer(t)
	ctx := context.Background()

	runDate := day(10)
	require.NoError(t, repo.SaveSnapshot(ctx, runDate, []cache.Recommendation{
		{RunDate: runDate, Symbol: "600000.SH", Name: "浦发银行", Rank: 1, TotalScore: 80},
	}))
	// Only the run-date bar exists; no later close to measure against.
	require.NoError(t, store.SaveKlines(ctx, []cache.Kline{
		{Symbol: "600000.SH", Period: cache.PeriodDaily, Date: day(10), Close: 10},
	}))

	report, err := reviewer.Review(ctx, runDate)
	require.NoError(t, err)
	require.Len(t, report.Picks, 1)
	assert.Nil(t, report.Picks[0].ReturnPct)
	assert.Nil(t, report.AvgReturn)
}

func TestReviewLatestNoSnapshots(t *testing.T) {
	reviewer, _, _ := newTestReviewer(t)
	_, err := reviewer.ReviewLatest(context.Background())
	require.Error(t, err)
}
