package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SaveRecommendations replaces the snapshot for a run date. Rerunning
// the same day overwrites the previous picks.
func (s *Store) SaveRecommendations(ctx context.Context, runDate time.Time, recs []Recommendation) error {
	now := s.now()
	dateStr := runDate.Format(dateLayout)

	return s.write(ctx, "recommendations", func() error {
		tx, err := s.db.Conn().BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM recommendations WHERE run_date = ?`, dateStr); err != nil {
			return err
		}
		for _, r := range recs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO recommendations
					(run_date, symbol, name, rank, total_score, fundamental_score, volume_score, price_score, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				dateStr, r.Symbol, r.Name, r.Rank, r.TotalScore,
				r.FundamentalScore, r.VolumeScore, r.PriceScore, now.Unix(),
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// GetRecommendations returns the snapshot for a run date, ordered by
// rank.
func (s *Store) GetRecommendations(ctx context.Context, runDate time.Time) ([]Recommendation, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT run_date, symbol, name, rank, total_score, fundamental_score, volume_score, price_score, created_at
		FROM recommendations WHERE run_date = ? ORDER BY rank ASC`,
		runDate.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	return scanRecommendations(rows)
}

// LatestRunDate returns the newest stored run date, or zero time when
// no snapshot exists.
func (s *Store) LatestRunDate(ctx context.Context) (time.Time, error) {
	var dateStr sql.NullString
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT MAX(run_date) FROM recommendations`).Scan(&dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("query latest run date: %w", err)
	}
	if !dateStr.Valid || dateStr.String == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, dateStr.String)
}

// RunDates returns stored run dates, newest first, capped at limit.
func (s *Store) RunDates(ctx context.Context, limit int) ([]time.Time, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT DISTINCT run_date FROM recommendations ORDER BY run_date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query run dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var dateStr string
		if err := rows.Scan(&dateStr); err != nil {
			return nil, err
		}
		d, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func scanRecommendations(rows *sql.Rows) ([]Recommendation, error) {
	var recs []Recommendation
	for rows.Next() {
		var r Recommendation
		var runDate string
		var created int64
		if err := rows.Scan(&runDate, &r.Symbol, &r.Name, &r.Rank, &r.TotalScore,
			&r.FundamentalScore, &r.VolumeScore, &r.PriceScore, &created); err != nil {
			return nil, err
		}
		r.RunDate, _ = time.Parse(dateLayout, runDate)
		r.CreatedAt = time.Unix(created, 0)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}
