package main

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// AccountRow is a stored account
type AccountRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// ProgressRow is the aggregate progress kept for an account across matches
type ProgressRow struct {
	AccountID int64
	TotalXP   int
	Level     int
	TopScore  int
	Matches   int
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", path, err)
	}

	// WAL lets the telemetry writer run beside account updates
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open db %s: %w", path, err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open db %s: %w", path, err)
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

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS progress (
		account_id INTEGER PRIMARY KEY REFERENCES accounts(id),
		total_xp INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 1,
		top_score INTEGER NOT NULL DEFAULT 0,
		matches INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS match_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		account_id INTEGER,
		match_id TEXT,
		data TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_match_events_match ON match_events(match_id);
	CREATE INDEX IF NOT EXISTS idx_match_events_type ON match_events(event_type, created_at);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		log.Error("db: migration failed", "err", err)
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// CreateAccount inserts an account and its empty progress row
func (db *DB) CreateAccount(username, passHash string) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec("INSERT INTO accounts (username, pass_hash) VALUES (?, ?)", username, passHash)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec("INSERT INTO progress (account_id) VALUES (?)", id); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// GetAccountByUsername returns nil, nil when no account matches
func (db *DB) GetAccountByUsername(username string) (*AccountRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM accounts WHERE username = ?",
		username,
	)
	a := &AccountRow{}
	err := row.Scan(&a.ID, &a.Username, &a.PassHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM accounts WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

// GetProgress returns nil, nil for an unknown account
func (db *DB) GetProgress(accountID int64) (*ProgressRow, error) {
	row := db.conn.QueryRow(
		"SELECT account_id, total_xp, level, top_score, matches FROM progress WHERE account_id = ?",
		accountID,
	)
	p := &ProgressRow{}
	err := row.Scan(&p.AccountID, &p.TotalXP, &p.Level, &p.TopScore, &p.Matches)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// AddMatchResult folds one finished match into an account's progress.
// The account level is recomputed from the new XP total.
func (db *DB) AddMatchResult(accountID int64, xpEarned, score int) (*ProgressRow, error) {
	_, err := db.conn.Exec(`
		UPDATE progress SET
			total_xp = total_xp + ?,
			top_score = MAX(top_score, ?),
			matches = matches + 1
		WHERE account_id = ?`,
		max(xpEarned, 0), score, accountID,
	)
	if err != nil {
		return nil, err
	}

	p, err := db.GetProgress(accountID)
	if err != nil || p == nil {
		return p, err
	}
	p.Level = CalculateLevel(p.TotalXP)
	_, err = db.conn.Exec("UPDATE progress SET level = ? WHERE account_id = ?", p.Level, accountID)
	return p, err
}

// HighScore is one row of the all-time score table
type HighScore struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	TopScore int    `json:"topScore"`
	TotalXP  int    `json:"totalXp"`
}

// GetHighScores returns accounts ordered by best single-match score
func (db *DB) GetHighScores(limit int) ([]HighScore, error) {
	rows, err := db.conn.Query(`
		SELECT a.username, p.level, p.top_score, p.total_xp
		FROM progress p JOIN accounts a ON a.id = p.account_id
		WHERE p.matches > 0
		ORDER BY p.top_score DESC, p.total_xp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []HighScore
	for rows.Next() {
		var h HighScore
		if err := rows.Scan(&h.Username, &h.Level, &h.TopScore, &h.TotalXP); err != nil {
			return nil, err
		}
		h.Rank = len(result) + 1
		result = append(result, h)
	}
	return result, rows.Err()
}

// GetSetting returns "" when the key is unset
func (db *DB) GetSetting(key string) string {
	var v string
	if err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v); err != nil {
		return ""
	}
	return v
}

// SetSetting inserts or replaces a setting
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
