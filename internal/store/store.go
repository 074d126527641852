// Package store persists scored messages in SQLite and serves the aggregate
// queries behind the score and leaderboard commands.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02 15:04:05"

// Store is the append-only score store.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the score database at dbPath and applies the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open score db: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("record schema version: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert appends one scored message. The timestamp defaults to the database
// clock unless the row carries one explicitly.
func (s *Store) Insert(ctx context.Context, row ScoredMessage) error {
	scoreJSON, err := json.Marshal(row.ScoreData)
	if err != nil {
		return fmt.Errorf("encode score data: %w", err)
	}

	if row.Timestamp.IsZero() {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO user_scores (user_id, username, group_id, group_name, message, score_data, average_score)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			row.UserID, row.Username, row.GroupID, row.GroupName, row.Message, string(scoreJSON), row.AverageScore)
	} else {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO user_scores (user_id, username, group_id, group_name, message, score_data, average_score, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			row.UserID, row.Username, row.GroupID, row.GroupName, row.Message, string(scoreJSON), row.AverageScore,
			row.Timestamp.UTC().Format(timeLayout))
	}
	if err != nil {
		return fmt.Errorf("insert scored message: %w", err)
	}
	return nil
}

// UserStats returns the mean average_score and row count for one user.
// ok is false when the user has no scored messages.
func (s *Store) UserStats(ctx context.Context, userID string) (avg float64, count int, ok bool, err error) {
	var nullAvg sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `
		SELECT AVG(average_score), COUNT(*)
		FROM user_scores
		WHERE user_id = ?`, userID).Scan(&nullAvg, &count)
	if err != nil {
		return 0, 0, false, fmt.Errorf("query user stats: %w", err)
	}
	if !nullAvg.Valid || count == 0 {
		return 0, 0, false, nil
	}
	return nullAvg.Float64, count, true, nil
}

// Leaderboard returns up to limit users ranked by mean average_score,
// restricted to users with at least minMessages scored messages. Grouping is
// by display handle, matching the reply formatting; ties break by username.
func (s *Store) Leaderboard(ctx context.Context, minMessages, limit int) ([]LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			username,
			AVG(average_score) AS avg_score,
			COUNT(*) AS message_count,
			MAX(average_score) AS best_score
		FROM user_scores
		GROUP BY username
		HAVING message_count >= ?
		ORDER BY avg_score DESC, username ASC
		LIMIT ?`, minMessages, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.AvgScore, &e.MessageCount, &e.BestScore); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TodayTop returns the username and score of the best-scored message with
// today's date (server date, like the rest of the store's timestamps).
// ok is false when no message was scored today.
func (s *Store) TodayTop(ctx context.Context) (username string, score float64, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT username, average_score
		FROM user_scores
		WHERE date(timestamp) = date('now')
		ORDER BY average_score DESC
		LIMIT 1`).Scan(&username, &score)
	if err == sql.ErrNoRows {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, fmt.Errorf("query today top: %w", err)
	}
	return username, score, true, nil
}

// Recent returns the newest scored messages, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]ScoredMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, username, group_id, group_name, message, score_data, average_score, timestamp
		FROM user_scores
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var msgs []ScoredMessage
	for rows.Next() {
		var m ScoredMessage
		var scoreJSON string
		var ts string
		if err := rows.Scan(&m.ID, &m.UserID, &m.Username, &m.GroupID, &m.GroupName, &m.Message, &scoreJSON, &m.AverageScore, &ts); err != nil {
			return nil, fmt.Errorf("scan recent row: %w", err)
		}
		if err := json.Unmarshal([]byte(scoreJSON), &m.ScoreData); err != nil {
			return nil, fmt.Errorf("decode score data: %w", err)
		}
		if parsed, err := time.Parse(timeLayout, ts); err == nil {
			m.Timestamp = parsed
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Count returns the total number of scored messages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_scores`).Scan(&count); err != nil {
		return 0, fmt.Errorf("query count: %w", err)
	}
	return count, nil
}
