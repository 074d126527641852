package store

import (
	"time"
)

// ScoredMessage is one scored, non-command chat message. Rows are created
// exactly once at insert time and never updated or deleted.
type ScoredMessage struct {
	ID           int64              `json:"id"`
	UserID       string             `json:"user_id"`
	Username     string             `json:"username"`
	GroupID      string             `json:"group_id"`
	GroupName    string             `json:"group_name"`
	Message      string             `json:"message"`
	ScoreData    map[string]float64 `json:"score_data"`
	AverageScore float64            `json:"average_score"`
	Timestamp    time.Time          `json:"timestamp"`
}

// LeaderboardEntry is one ranked row of the leaderboard query.
type LeaderboardEntry struct {
	Username     string  `json:"username"`
	AvgScore     float64 `json:"avg_score"`
	MessageCount int     `json:"message_count"`
	BestScore    float64 `json:"best_score"`
}

// SchemaVersion is recorded in the schema_version table at startup.
const SchemaVersion = 1

const Schema = `
CREATE TABLE IF NOT EXISTS user_scores (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER,
	username TEXT,
	group_id INTEGER,
	group_name TEXT,
	message TEXT,
	score_data JSON,
	average_score FLOAT,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_user_scores_user ON user_scores(user_id);
CREATE INDEX IF NOT EXISTS idx_user_scores_username ON user_scores(username);
CREATE INDEX IF NOT EXISTS idx_user_scores_timestamp ON user_scores(timestamp);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
