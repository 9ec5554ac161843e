// Package session persists the bearer credential and account identifier
// between runs. These two values are the only client-side durable state; a
// missing credential means "unauthenticated", not an error.
package session

import (
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Fixed keys the client has always persisted under.
const (
	KeyToken = "chronos_token"
	KeyEmail = "chronos_email"
)

type Session struct {
	Token string
	Email string
}

// Authenticated reports whether a credential was restored.
func (s Session) Authenticated() bool { return s.Token != "" }

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("session db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS session (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`
	_, err := s.db.Exec(ddl)
	return err
}

// Load restores the persisted session. Absent keys come back empty.
func (s *Store) Load() (Session, error) {
	var sess Session
	rows, err := s.db.Query(`SELECT key, value FROM session;`)
	if err != nil {
		return sess, err
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return sess, err
		}
		switch key {
		case KeyToken:
			sess.Token = value
		case KeyEmail:
			sess.Email = value
		}
	}
	return sess, rows.Err()
}

// Save persists the credential and account identifier.
func (s *Store) Save(sess Session) error {
	if err := s.put(KeyToken, sess.Token); err != nil {
		return err
	}
	return s.put(KeyEmail, sess.Email)
}

// Clear drops the persisted session, returning the client to the
// unauthenticated state.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM session WHERE key IN (?, ?);`, KeyToken, KeyEmail)
	return err
}

func (s *Store) put(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value;`, key, value)
	return err
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
