// Package storage provides SQLite-based persistence for level attempts.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for attempt persistence.
// Attempt history feeds the stats view and the cross-session win-rate
// query; the simulation itself never touches storage.
type Store struct {
	db *sql.DB
}

// Attempt is a single recorded level attempt.
type Attempt struct {
	ID            int64
	LevelID       string
	Won           bool
	Score         int
	MaxCombo      int
	EndDifficulty float64
	NearMiss      bool    // the attempt ended as a near miss
	Duration      float64 // sim-seconds
	CreatedAt     time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level_id TEXT NOT NULL,
			won INTEGER NOT NULL,
			score INTEGER NOT NULL,
			max_combo INTEGER NOT NULL DEFAULT 0,
			end_difficulty REAL NOT NULL DEFAULT 1.0,
			near_miss INTEGER NOT NULL DEFAULT 0,
			duration_secs REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_attempts_level_id ON attempts(level_id);
		CREATE INDEX IF NOT EXISTS idx_attempts_top ON attempts(level_id, score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveAttempt records a finished attempt. Returns the inserted ID.
func (s *Store) SaveAttempt(a Attempt) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO attempts
		 (level_id, won, score, max_combo, end_difficulty, near_miss, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.LevelID, a.Won, a.Score, a.MaxCombo, a.EndDifficulty, a.NearMiss, a.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save attempt: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentAttempts retrieves the most recent attempts for a level, newest
// first.
func (s *Store) RecentAttempts(levelID string, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, level_id, won, score, max_combo, end_difficulty, near_miss, duration_secs, created_at
		 FROM attempts
		 WHERE level_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		levelID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return attempts, nil
}

func scanAttempt(rows *sql.Rows) (Attempt, error) {
	var a Attempt
	var createdAt any
	if err := rows.Scan(&a.ID, &a.LevelID, &a.Won, &a.Score, &a.MaxCombo,
		&a.EndDifficulty, &a.NearMiss, &a.Duration, &createdAt); err != nil {
		return Attempt{}, fmt.Errorf("storage: cannot scan row: %w", err)
	}

	// Parse the datetime - handle both time.Time and string
	switch v := createdAt.(type) {
	case time.Time:
		a.CreatedAt = v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			a.CreatedAt = parsed
		}
	}
	return a, nil
}

// WinRate returns the cross-session win rate for a level over its most
// recent attempts, plus the number of attempts considered. Returns 0, 0
// when the level has never been attempted.
func (s *Store) WinRate(levelID string, window int) (float64, int, error) {
	if window <= 0 {
		window = 20
	}

	var wins, count int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(won), 0), COUNT(*)
		 FROM (SELECT won FROM attempts WHERE level_id = ? ORDER BY id DESC LIMIT ?)`,
		levelID, window,
	).Scan(&wins, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("storage: cannot query win rate: %w", err)
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(wins) / float64(count), count, nil
}

// BestScore returns the highest score recorded for a level, 0 if the
// level has never been attempted.
func (s *Store) BestScore(levelID string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM attempts WHERE level_id = ?",
		levelID,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// ClearAttempts deletes all attempts for the given level.
func (s *Store) ClearAttempts(levelID string) error {
	_, err := s.db.Exec("DELETE FROM attempts WHERE level_id = ?", levelID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear attempts: %w", err)
	}
	return nil
}

// LevelStats contains aggregated statistics for one level.
type LevelStats struct {
	LevelID    string
	Attempts   int
	Wins       int
	BestScore  int
	AvgScore   float64
	NearMisses int
	LastPlayed time.Time
}

// GetLevelStats retrieves aggregated statistics for a specific level.
func (s *Store) GetLevelStats(levelID string) (*LevelStats, error) {
	stats := &LevelStats{LevelID: levelID}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(won), 0), COALESCE(MAX(score), 0),
		        COALESCE(AVG(score), 0), COALESCE(SUM(near_miss), 0)
		 FROM attempts WHERE level_id = ?`,
		levelID,
	).Scan(&stats.Attempts, &stats.Wins, &stats.BestScore, &stats.AvgScore, &stats.NearMisses)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get level stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM attempts WHERE level_id = ? ORDER BY id DESC LIMIT 1`,
		levelID,
	).Scan(&lastPlayed)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		switch v := lastPlayed.(type) {
		case time.Time:
			stats.LastPlayed = v
		case string:
			if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
				stats.LastPlayed = parsed
			}
		}
	}

	return stats, nil
}

// GetAllLevelStats retrieves statistics for every level that has been
// attempted.
func (s *Store) GetAllLevelStats() (map[string]*LevelStats, error) {
	rows, err := s.db.Query(
		`SELECT level_id, COUNT(*), SUM(won), MAX(score), AVG(score), SUM(near_miss), MAX(created_at)
		 FROM attempts
		 GROUP BY level_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all level stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*LevelStats)
	for rows.Next() {
		var st LevelStats
		var lastPlayed any
		if err := rows.Scan(&st.LevelID, &st.Attempts, &st.Wins, &st.BestScore,
			&st.AvgScore, &st.NearMisses, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}

		switch v := lastPlayed.(type) {
		case time.Time:
			st.LastPlayed = v
		case string:
			if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
				st.LastPlayed = parsed
			}
		}

		stats[st.LevelID] = &st
	}

	return stats, nil
}
