// Package sqlite provides a durable ConversationStore backed by SQLite.
// Turns are stored as JSON rows keyed by session id and creation order, so a
// session survives process restarts and can be restored into a live loop.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/autopaper/autopaper/core"
)

// Store persists conversation turns in a SQLite database. Safe for
// concurrent use; database/sql serializes access to the single connection.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at dbPath and ensures the schema exists.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		session_id TEXT NOT NULL,
		created_order INTEGER NOT NULL,
		turn TEXT NOT NULL,
		PRIMARY KEY (session_id, created_order)
	);

	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AppendTurn stores one turn. The (session, order) primary key rejects
// duplicate orders, which guards the append-only contract at the storage
// layer too.
func (s *Store) AppendTurn(sessionID string, t core.Turn) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode turn: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT INTO turns (session_id, created_order, turn) VALUES (?, ?, ?)",
		sessionID, t.CreatedOrder, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to store turn: %w", err)
	}
	return nil
}

// Turns returns the ordered history for a session. An unknown session yields
// an empty slice.
func (s *Store) Turns(sessionID string) ([]core.Turn, error) {
	rows, err := s.db.Query(
		"SELECT turn FROM turns WHERE session_id = ? ORDER BY created_order",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	turns := []core.Turn{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		var t core.Turn
		if err := json.Unmarshal([]byte(data), &t); err != nil {
			return nil, fmt.Errorf("failed to decode turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read turns: %w", err)
	}
	return turns, nil
}

// Delete removes all turns of a session.
func (s *Store) Delete(sessionID string) error {
	_, err := s.db.Exec("DELETE FROM turns WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
