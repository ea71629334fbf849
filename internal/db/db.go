// Package db wraps the read-only relational store the auth handler
// consults: users, user_stats, and channels (spec §6). The core only ever
// reads from it — schema ownership and migrations live outside this
// repository.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a row the caller asked for doesn't exist.
var ErrNotFound = errors.New("db: not found")

// User is the subset of the users table the core consumes.
type User struct {
	ID           int32
	Username     string
	PasswordHash string // bcrypt hash
	Country      string // ISO country code, resolved to an index by the auth handler
}

// Stats is the subset of user_stats the core consumes, for mode 0 (osu!standard).
type Stats struct {
	UserID      int32
	RankedScore int64
	TotalScore  int64
	AvgAccuracy float32
	Performance int16
}

// Channel is one row of the channels table.
type Channel struct {
	Name     string
	Topic    string
	Autojoin bool
}

// Store is a thin wrapper around *sql.DB exposing only the queries the
// auth handler needs.
type Store struct {
	db *sql.DB
}

// Open connects to dsn (a MySQL data source name) and verifies the
// connection with a ping.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	return &Store{db: conn}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// FindUserByUsername looks up a user by its lowercased, space-to-underscore
// normalized username (spec §4.7 step 2).
func (s *Store) FindUserByUsername(ctx context.Context, usernameSafe string) (User, error) {
	const q = `SELECT id, username, password, country FROM users WHERE username_safe = ?`
	var u User
	err := s.db.QueryRowContext(ctx, q, usernameSafe).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Country)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("db: find user: %w", err)
	}
	return u, nil
}

// FindStats looks up the mode-0 stats row for userID (spec §4.7 step 4).
func (s *Store) FindStats(ctx context.Context, userID int32) (Stats, error) {
	const q = `SELECT user_id, ranked_score, total_score, avg_accuracy, performance
	           FROM user_stats WHERE user_id = ? AND mode = 0`
	var st Stats
	err := s.db.QueryRowContext(ctx, q, userID).Scan(&st.UserID, &st.RankedScore, &st.TotalScore, &st.AvgAccuracy, &st.Performance)
	if errors.Is(err, sql.ErrNoRows) {
		return Stats{}, ErrNotFound
	}
	if err != nil {
		return Stats{}, fmt.Errorf("db: find stats: %w", err)
	}
	return st, nil
}

// ListChannels returns every row of the channels table, ordered by name.
func (s *Store) ListChannels(ctx context.Context) ([]Channel, error) {
	const q = `SELECT name, topic, autojoin FROM channels ORDER BY name`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("db: list channels: %w", err)
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		var c Channel
		if err := rows.Scan(&c.Name, &c.Topic, &c.Autojoin); err != nil {
			return nil, fmt.Errorf("db: scan channel: %w", err)
		}
		channels = append(channels, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: list channels: %w", err)
	}
	return channels, nil
}
