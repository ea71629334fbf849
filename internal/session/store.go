package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a token has no session or buffer record.
var ErrNotFound = errors.New("session: not found")

// Store is the abstraction over the shared key/value service described in
// spec §4.4. Implementations must make AppendBuffer atomic under
// concurrent callers from different workers — that is the sole
// synchronization primitive the dispatcher relies on (spec §5).
type Store interface {
	PutSession(ctx context.Context, token string, s Session) error
	GetSession(ctx context.Context, token string) (Session, error)

	PutBuffer(ctx context.Context, token string, buf []byte) error
	GetBuffer(ctx context.Context, token string) ([]byte, error)
	AppendBuffer(ctx context.Context, token string, data []byte) error

	ListTokens(ctx context.Context) ([]string, error)
	Drop(ctx context.Context, token string) error
}
