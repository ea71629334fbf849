// Package localcache provides an embedded SQLite fallback for the channel
// list and a command audit log for the bot. It is a local, read-cheap
// mirror of data whose authoritative source is the relational store
// (internal/db); nothing here participates in session or presence state.
//
// Migration design: SQL statements are kept in the [migrations] slice as
// ordered strings. Each is applied exactly once; the applied version is
// tracked in the schema_migrations table. To add a migration, append a new
// string — never edit or reorder existing entries.
package localcache

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// migrations holds the ordered list of DDL statements that bring the
// schema up to date. Index i corresponds to version i+1.
var migrations = []string{
	// v1 — channel seed cache, mirroring the relational store's channels
	// table so the login handler can still list something when MySQL is
	// briefly unreachable.
	`CREATE TABLE IF NOT EXISTS channels (
		name       TEXT PRIMARY KEY,
		topic      TEXT NOT NULL DEFAULT '',
		autojoin   INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT (unixepoch())
	)`,
	// v2 — bot command audit log.
	`CREATE TABLE IF NOT EXISTS bot_commands (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		username   TEXT NOT NULL,
		command    TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (unixepoch())
	)`,
	// v3 — index for audit queries.
	`CREATE INDEX IF NOT EXISTS idx_bot_commands_username ON bot_commands(username)`,
}

// Store wraps an embedded SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies any
// pending migrations. Use ":memory:" for ephemeral in-process storage
// (tests).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("localcache: open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		slog.Warn("localcache: enable WAL mode", "error", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		slog.Warn("localcache: set busy_timeout", "error", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("localcache: migrate: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.QueryRow(
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`,
	).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i, stmt := range migrations {
		v := i + 1
		if v <= current {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", v, err)
		}
		if _, err := s.db.Exec(`INSERT INTO schema_migrations(version) VALUES(?)`, v); err != nil {
			return fmt.Errorf("record migration %d: %w", v, err)
		}
		slog.Debug("localcache: applied migration", "version", v)
	}
	return nil
}

// CachedChannel mirrors the relational store's channel row.
type CachedChannel struct {
	Name     string
	Topic    string
	Autojoin bool
}

// SeedChannels replaces the cached channel list with channels. main calls
// it once at startup with the relational store's list; later successful
// reads from the relational store do not refresh it.
func (s *Store) SeedChannels(ctx context.Context, channels []CachedChannel) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("localcache: begin seed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM channels`); err != nil {
		return fmt.Errorf("localcache: clear channels: %w", err)
	}
	for _, ch := range channels {
		autojoin := 0
		if ch.Autojoin {
			autojoin = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO channels(name, topic, autojoin) VALUES(?, ?, ?)`,
			ch.Name, ch.Topic, autojoin,
		); err != nil {
			return fmt.Errorf("localcache: insert channel %q: %w", ch.Name, err)
		}
	}
	return tx.Commit()
}

// ListChannels returns the cached channel list, ordered by name.
func (s *Store) ListChannels(ctx context.Context) ([]CachedChannel, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, topic, autojoin FROM channels ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("localcache: list channels: %w", err)
	}
	defer rows.Close()

	var channels []CachedChannel
	for rows.Next() {
		var ch CachedChannel
		var autojoin int
		if err := rows.Scan(&ch.Name, &ch.Topic, &autojoin); err != nil {
			return nil, fmt.Errorf("localcache: scan channel: %w", err)
		}
		ch.Autojoin = autojoin != 0
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// LogCommand records one bot command invocation for later audit.
func (s *Store) LogCommand(ctx context.Context, username, command string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bot_commands(username, command) VALUES(?, ?)`, username, command,
	)
	if err != nil {
		return fmt.Errorf("localcache: log command: %w", err)
	}
	return nil
}

// RecentCommands returns the most recent command invocations by username,
// newest first.
func (s *Store) RecentCommands(ctx context.Context, username string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT command FROM bot_commands WHERE username = ? ORDER BY id DESC LIMIT ?`,
		username, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("localcache: recent commands: %w", err)
	}
	defer rows.Close()

	var commands []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("localcache: scan command: %w", err)
		}
		commands = append(commands, c)
	}
	return commands, rows.Err()
}
