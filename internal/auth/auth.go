// Package auth implements the login handler (spec §4.7): parse the login
// blob, verify credentials against the relational store, build a Session,
// and emit the fixed welcome packet sequence.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"bancho/server/internal/banchoerr"
	"bancho/server/internal/codec"
	"bancho/server/internal/db"
	"bancho/server/internal/localcache"
	"bancho/server/internal/login"
	"bancho/server/internal/presence"
	"bancho/server/internal/protocol"
	"bancho/server/internal/session"
)

// Brand is the name announced in the post-login welcome message.
const Brand = "Aegis"

// ProtocolVersion is the value sent in every ProtocolNegotiation packet.
const ProtocolVersion = 19

// UserStore is the narrow slice of the relational store the auth handler
// needs. A fake implementation backs it in tests; db.Store backs it in
// production.
type UserStore interface {
	FindUserByUsername(ctx context.Context, usernameSafe string) (db.User, error)
	FindStats(ctx context.Context, userID int32) (db.Stats, error)
	ListChannels(ctx context.Context) ([]db.Channel, error)
}

// BotSession is the fixed presence record the server announces as an
// always-online participant (spec §4.7 step 6: "a UserPresence and
// HandleOsuUpdate for the fixed bot session").
var BotSession = protocol.BanchoPresence{
	PlayerID:    -1,
	Username:    "Aegis",
	Timezone:    0,
	CountryCode: 0,
	PlayMode:    0,
	Permissions: 1,
	PlayerRank:  0,
}

// Result is the outcome of a login attempt: always a 200 response, with
// TokenHeader distinguishing success (a fresh session token) from failure
// (a diagnostic string, spec §6).
type Result struct {
	TokenHeader string
	Body        []byte
}

// ChannelCache is the narrow slice of the local cache the login handler
// falls back to when the relational store's channel listing fails.
type ChannelCache interface {
	ListChannels(ctx context.Context) ([]localcache.CachedChannel, error)
}

// Handler resolves login requests against users, the shared session
// store, and the presence engine.
type Handler struct {
	users        UserStore
	store        session.Store
	presence     *presence.Engine
	log          *slog.Logger
	attempts     *prometheus.CounterVec
	channelCache ChannelCache
}

// New returns a Handler. attempts may be nil to skip login metrics.
func New(users UserStore, store session.Store, presence *presence.Engine, log *slog.Logger, attempts ...*prometheus.CounterVec) *Handler {
	h := &Handler{users: users, store: store, presence: presence, log: log}
	if len(attempts) > 0 {
		h.attempts = attempts[0]
	}
	return h
}

// WithChannelCache attaches a fallback channel source, returning h for
// chaining. When the relational store's ListChannels call fails, Login
// retries against cache instead of failing the request.
func (h *Handler) WithChannelCache(cache ChannelCache) *Handler {
	h.channelCache = cache
	return h
}

func (h *Handler) recordOutcome(outcome string) {
	if h.attempts != nil {
		h.attempts.WithLabelValues(outcome).Inc()
	}
}

// usernameSafe lowercases username and replaces ASCII spaces with
// underscores (spec §4.7 step 2).
func usernameSafe(username string) string {
	return strings.ReplaceAll(strings.ToLower(username), " ", "_")
}

// Login runs the full flow described in spec §4.7 and returns the response
// to write back to the client. A non-nil error is either an External
// MalformedPacket (the body did not parse) or an Internal error from the
// relational or session store; the credential failures (bad username, bad
// password, missing stats) are reported through Result, not error, because
// the HTTP layer responds 200 either way.
func (h *Handler) Login(ctx context.Context, body []byte) (Result, error) {
	data, err := login.Parse(body)
	if err != nil {
		return Result{}, banchoerr.MalformedPacket(err.Error())
	}

	safe := usernameSafe(data.Username)
	user, err := h.users.FindUserByUsername(ctx, safe)
	if err != nil {
		if err == db.ErrNotFound {
			h.recordOutcome("invalid_username")
			return h.rejection(protocol.LoginErrorGeneric, "invalid username"), nil
		}
		return Result{}, banchoerr.Internal("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(data.PasswordMD5)); err != nil {
		h.recordOutcome("invalid_password")
		return h.rejection(protocol.LoginErrorGeneric, "invalid password"), nil
	}

	stats, err := h.users.FindStats(ctx, user.ID)
	if err != nil {
		if err == db.ErrNotFound {
			h.recordOutcome("invalid_stats")
			return h.rejection(protocol.LoginErrorStatsMissing, "invalid stats"), nil
		}
		return Result{}, banchoerr.Internal("find stats", err)
	}

	sess := buildSession(user, stats)
	sess.ShowCity = data.ShowCity
	sess.AllowPMs = data.AllowPMs

	w := codec.NewWriter()
	protocol.WriteLoginReply(w, sess.ID)
	protocol.WriteProtocolNegotiation(w, ProtocolVersion)
	protocol.WriteAnnounce(w, fmt.Sprintf("Welcome to %s, %s!", Brand, user.Username))
	protocol.WriteLoginPermissions(w, 4)
	protocol.WriteChannelListingComplete(w)

	channels, err := h.users.ListChannels(ctx)
	if err != nil {
		if h.channelCache == nil {
			return Result{}, banchoerr.Internal("list channels", err)
		}
		h.log.Warn("relational channel listing failed, falling back to local cache", "error", err)
		cached, cacheErr := h.channelCache.ListChannels(ctx)
		if cacheErr != nil {
			return Result{}, banchoerr.Internal("list channels", err)
		}
		channels = make([]db.Channel, len(cached))
		for i, ch := range cached {
			channels[i] = db.Channel{Name: ch.Name, Topic: ch.Topic, Autojoin: ch.Autojoin}
		}
	}
	for _, ch := range channels {
		protocol.WriteChannelAvailable(w, protocol.BanchoChannel{Name: ch.Name, Topic: ch.Topic, Connected: 0})
		if ch.Autojoin {
			protocol.WriteChannelJoinSuccess(w, ch.Name)
		}
	}

	protocol.WriteUserPresence(w, sess.Presence)
	protocol.WriteHandleOsuUpdate(w, sess.Stats)
	protocol.WriteChannelJoinSuccess(w, "#osu")

	peerTokens, err := h.presence.OnlineTokens(ctx)
	if err != nil {
		return Result{}, banchoerr.Internal("list online tokens", err)
	}
	for _, peerToken := range peerTokens {
		peer, err := h.store.GetSession(ctx, peerToken)
		if err != nil {
			continue
		}
		protocol.WriteUserPresence(w, peer.Presence)
		protocol.WriteHandleOsuUpdate(w, peer.Stats)
	}

	protocol.WriteUserPresence(w, BotSession)
	protocol.WriteHandleOsuUpdate(w, protocol.BanchoStats{PlayerID: BotSession.PlayerID})

	token := uuid.NewString()
	if err := h.store.PutSession(ctx, token, sess); err != nil {
		return Result{}, banchoerr.Internal("put session", err)
	}
	if err := h.store.PutBuffer(ctx, token, nil); err != nil {
		return Result{}, banchoerr.Internal("put buffer", err)
	}

	announce := codec.NewWriter()
	protocol.WriteUserPresence(announce, sess.Presence)
	protocol.WriteHandleOsuUpdate(announce, sess.Stats)
	h.presence.Broadcast(ctx, token, announce.Bytes())

	h.recordOutcome("success")
	return Result{TokenHeader: token, Body: w.Bytes()}, nil
}

// rejection builds the failure-path response: a single LoginReply carrying
// code, with no session created (spec §4.7 steps 2-4).
func (h *Handler) rejection(code int32, reason string) Result {
	w := codec.NewWriter()
	protocol.WriteLoginReply(w, code)
	return Result{TokenHeader: reason, Body: w.Bytes()}
}

func buildSession(user db.User, stats db.Stats) session.Session {
	return session.Session{
		ID: user.ID,
		Presence: protocol.BanchoPresence{
			PlayerID:    user.ID,
			Username:    user.Username,
			Timezone:    0,
			CountryCode: CountryIndex(user.Country),
			PlayMode:    0,
			Permissions: 1,
			PlayerRank:  int32(stats.Performance),
		},
		Stats: protocol.BanchoStats{
			PlayerID:    user.ID,
			RankedScore: stats.RankedScore,
			Accuracy:    stats.AvgAccuracy,
			TotalScore:  stats.TotalScore,
			Performance: stats.Performance,
		},
	}
}
