// Package presence implements the fan-out broadcast engine (spec §4.8):
// encode a packet once, then append it to every other online session's
// buffer so it is delivered on that session's next poll. Fan-out errors
// are logged and swallowed — a slow or vanished peer never fails the
// caller's own request.
package presence

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"bancho/server/internal/session"
)

// Engine broadcasts encoded packets to online sessions via a Store.
type Engine struct {
	store    session.Store
	log      *slog.Logger
	fanoutErr prometheus.Counter
}

// New returns an Engine backed by store, logging fan-out failures to log.
// fanoutErr may be nil to skip metrics.
func New(store session.Store, log *slog.Logger, fanoutErr ...prometheus.Counter) *Engine {
	e := &Engine{store: store, log: log}
	if len(fanoutErr) > 0 {
		e.fanoutErr = fanoutErr[0]
	}
	return e
}

// Broadcast appends data to the buffer of every online session except
// exclude (typically the sender's own token; pass "" to include everyone).
func (e *Engine) Broadcast(ctx context.Context, exclude string, data []byte) {
	if len(data) == 0 {
		return
	}
	tokens, err := e.store.ListTokens(ctx)
	if err != nil {
		e.log.Error("presence: list tokens failed", "error", err)
		return
	}
	for _, token := range tokens {
		if token == exclude {
			continue
		}
		if err := e.store.AppendBuffer(ctx, token, data); err != nil {
			e.log.Warn("presence: append to peer failed", "token", token, "error", err)
			if e.fanoutErr != nil {
				e.fanoutErr.Inc()
			}
		}
	}
}

// SendTo appends data to a single session's buffer, logging and swallowing
// any failure rather than propagating it to the caller.
func (e *Engine) SendTo(ctx context.Context, token string, data []byte) {
	if len(data) == 0 {
		return
	}
	if err := e.store.AppendBuffer(ctx, token, data); err != nil {
		e.log.Warn("presence: append to target failed", "token", token, "error", err)
		if e.fanoutErr != nil {
			e.fanoutErr.Inc()
		}
	}
}

// OnlineTokens returns every currently online session token.
func (e *Engine) OnlineTokens(ctx context.Context) ([]string, error) {
	return e.store.ListTokens(ctx)
}
