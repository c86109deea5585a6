// Package transcript records the rendered turns of a session so a front end
// can re-read what it has shown. The default DSN is an in-memory database,
// so nothing survives process exit.
package transcript

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/forgehq/forge-go/internal/logger"
)

// MemoryDSN keeps the store inside the process.
const MemoryDSN = ":memory:"

// Entry is one rendered turn, including error lines, in display order.
type Entry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store writes entries to SQLite and keeps an in-memory copy as fallback
// when the database is unavailable. Each manager owns its own Store.
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	mem []Entry
	seq int64
}

// Open creates a store on the given DSN; an empty DSN means MemoryDSN. A
// failure to open or migrate degrades to memory-only, it never fails the
// caller.
func Open(dsn string) *Store {
	if dsn == "" {
		dsn = MemoryDSN
	}
	s := &Store{}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.L.Warn("sqlite open failed; transcript is memory-only", "error", err)
		return s
	}
	// A single connection keeps :memory: databases from fragmenting across
	// the pool.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		role TEXT,
		content TEXT,
		created_at DATETIME
	);`); err != nil {
		logger.L.Warn("sqlite table creation failed; transcript is memory-only", "error", err)
		db.Close()
		return s
	}
	s.db = db
	return s
}

// Save records a rendered turn. Database errors degrade to the in-memory
// copy and are logged, not returned.
func (s *Store) Save(sessionID, role, content string) {
	now := time.Now()
	if s.db != nil {
		if _, err := s.db.Exec(
			`INSERT INTO turns (session_id, role, content, created_at) VALUES (?,?,?,?);`,
			sessionID, role, content, now,
		); err != nil {
			logger.L.Error("failed to store transcript turn", "error", err)
		}
	}

	s.mu.Lock()
	s.seq++
	s.mem = append(s.mem, Entry{ID: s.seq, SessionID: sessionID, Role: role, Content: content, CreatedAt: now})
	s.mu.Unlock()
}

// List returns all turns of a session in display order.
func (s *Store) List(sessionID string) []Entry {
	if s.db != nil {
		rows, err := s.db.Query(
			`SELECT id, session_id, role, content, created_at FROM turns WHERE session_id = ? ORDER BY id ASC;`,
			sessionID,
		)
		if err == nil {
			defer rows.Close()
			var out []Entry
			for rows.Next() {
				var e Entry
				if err := rows.Scan(&e.ID, &e.SessionID, &e.Role, &e.Content, &e.CreatedAt); err == nil {
					out = append(out, e)
				}
			}
			return out
		}
		logger.L.Warn("transcript query failed; serving in-memory copy", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for _, e := range s.mem {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out
}

// Clear drops all turns of a session.
func (s *Store) Clear(sessionID string) {
	if s.db != nil {
		if _, err := s.db.Exec(`DELETE FROM turns WHERE session_id = ?;`, sessionID); err != nil {
			logger.L.Error("failed to clear transcript", "error", err)
		}
	}

	s.mu.Lock()
	kept := s.mem[:0]
	for _, e := range s.mem {
		if e.SessionID != sessionID {
			kept = append(kept, e)
		}
	}
	s.mem = kept
	s.mu.Unlock()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
