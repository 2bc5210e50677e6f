package main

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// RunRecord is one finished run
type RunRecord struct {
	SessionID     string
	Mode          string
	Score         int
	Distance      float64
	Duration      float64 // seconds
	ShotsFired    int
	MissilesFired int
	CarsDestroyed int
	Rewards       int
	Crashes       int
	EndedAt       time.Time
}

// NewRunRecord builds a record from a run's final stats
func NewRunRecord(sessionID string, mode sim.Mode, st sim.Stats) RunRecord {
	return RunRecord{
		SessionID:     sessionID,
		Mode:          mode.String(),
		Score:         st.Score,
		Distance:      st.Distance,
		Duration:      st.Duration,
		ShotsFired:    st.ShotsFired,
		MissilesFired: st.MissilesFired,
		CarsDestroyed: st.CarsDestroyed,
		Rewards:       st.Rewards,
		Crashes:       st.Crashes,
		EndedAt:       time.Now().UTC(),
	}
}

// LeaderboardEntry is one row of the best-runs table
type LeaderboardEntry struct {
	SessionID string  `json:"sid"`
	Mode      string  `json:"mode"`
	Score     int     `json:"score"`
	Distance  float64 `json:"distance"`
	Duration  float64 `json:"duration"`
	EndedAt   string  `json:"endedAt"`
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL UNIQUE,
		mode TEXT NOT NULL DEFAULT 'arcade',
		score INTEGER NOT NULL DEFAULT 0,
		distance REAL NOT NULL DEFAULT 0,
		duration REAL NOT NULL DEFAULT 0,
		shots_fired INTEGER NOT NULL DEFAULT 0,
		missiles_fired INTEGER NOT NULL DEFAULT 0,
		cars_destroyed INTEGER NOT NULL DEFAULT 0,
		rewards INTEGER NOT NULL DEFAULT 0,
		crashes INTEGER NOT NULL DEFAULT 0,
		ended_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_mode_score ON runs(mode, score DESC);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// InsertRuns writes a batch of runs in one transaction
func (db *DB) InsertRuns(runs []RunRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO runs
		(session_id, mode, score, distance, duration, shots_fired, missiles_fired, cars_destroyed, rewards, crashes, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range runs {
		_, err := stmt.Exec(r.SessionID, r.Mode, r.Score, r.Distance, r.Duration,
			r.ShotsFired, r.MissilesFired, r.CarsDestroyed, r.Rewards, r.Crashes,
			r.EndedAt.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert run %s: %w", r.SessionID, err)
		}
	}
	return tx.Commit()
}

// GetLeaderboard returns the best runs by score. An empty mode returns all
// modes.
func (db *DB) GetLeaderboard(mode string, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := db.conn.Query(`
		SELECT session_id, mode, score, distance, duration, ended_at
		FROM runs
		WHERE ? = '' OR mode = ?
		ORDER BY score DESC, distance DESC
		LIMIT ?
	`, mode, mode, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	result := make([]LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.SessionID, &e.Mode, &e.Score, &e.Distance, &e.Duration, &e.EndedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// RunCount returns the number of recorded runs
func (db *DB) RunCount() (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n)
	return n, err
}
