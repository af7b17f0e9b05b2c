// internal/daily/store.go
//
// SQLite persistence for daily challenge results.
// One row per (user, date), enforced by UNIQUE(user_id, date); a second
// insert for the same pair is ignored.

package daily

import (
	"context"
	"database/sql"
	"fmt"
)

// Result is a finished daily round.
type Result struct {
	UserID     string `json:"userId"`
	Date       string `json:"date"`
	MovieIndex int    `json:"movieIndex"`
	Attempts   int    `json:"attempts"`
	Won        bool   `json:"won"`
	ElapsedMs  int64  `json:"elapsedMs"`
}

// LBRow is one leaderboard line. Username is empty for guests.
type LBRow struct {
	UserID    string `json:"userId"`
	Username  string `json:"username,omitempty"`
	Attempts  int    `json:"attempts"`
	ElapsedMs int64  `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?`,
		userID, date,
	).Scan(&cnt)
	if err != nil {
		return false, fmt.Errorf("daily lookup: %w", err)
	}
	return cnt > 0, nil
}

// InsertResult records r, ignoring duplicates.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, movie_index, attempts, won, elapsed_ms)
		 VALUES(?,?,?,?,?,?)`,
		r.UserID, r.Date, r.MovieIndex, r.Attempts, r.Won, r.ElapsedMs,
	)
	if err != nil {
		return fmt.Errorf("daily insert: %w", err)
	}
	return nil
}

// Leaderboard returns the winners for date: fewest wrong guesses first,
// then fastest.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.user_id, COALESCE(u.username, ''), d.attempts, d.elapsed_ms
		 FROM daily_results d LEFT JOIN users u ON u.id = d.user_id
		 WHERE d.date=? AND d.won=1
		 ORDER BY d.attempts ASC, d.elapsed_ms ASC, d.created_at ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("daily leaderboard: %w", err)
	}
	defer rows.Close()
	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.Attempts, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
