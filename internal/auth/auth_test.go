package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bancho/server/internal/codec"
	"bancho/server/internal/db"
	"bancho/server/internal/localcache"
	"bancho/server/internal/presence"
	"bancho/server/internal/protocol"
	"bancho/server/internal/session"
)

type fakeUsers struct {
	byName      map[string]db.User
	statsBy     map[int32]db.Stats
	channels    []db.Channel
	channelsErr error
}

func (f *fakeUsers) FindUserByUsername(_ context.Context, usernameSafe string) (db.User, error) {
	u, ok := f.byName[usernameSafe]
	if !ok {
		return db.User{}, db.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindStats(_ context.Context, userID int32) (db.Stats, error) {
	s, ok := f.statsBy[userID]
	if !ok {
		return db.Stats{}, db.ErrNotFound
	}
	return s, nil
}

func (f *fakeUsers) ListChannels(_ context.Context) ([]db.Channel, error) {
	if f.channelsErr != nil {
		return nil, f.channelsErr
	}
	return f.channels, nil
}

type fakeChannelCache struct {
	channels []localcache.CachedChannel
	err      error
}

func (f *fakeChannelCache) ListChannels(_ context.Context) ([]localcache.CachedChannel, error) {
	return f.channels, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(users UserStore, store session.Store) *Handler {
	return New(users, store, presence.New(store, discardLogger()), discardLogger())
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func loginBody(username, passwordMD5 string) []byte {
	return []byte(username + "\n" + passwordMD5 + "\n20230101.6|2|1|p:a:b:c:d|0\n")
}

func TestLoginSuccessEmitsWelcomeSequence(t *testing.T) {
	ctx := context.Background()
	users := &fakeUsers{
		byName: map[string]db.User{
			"alice": {ID: 7, Username: "alice", PasswordHash: hashPassword(t, "aabbcc"), Country: "US"},
		},
		statsBy: map[int32]db.Stats{
			7: {UserID: 7, RankedScore: 100, AvgAccuracy: 99, Performance: 3},
		},
		channels: []db.Channel{{Name: "#announce", Topic: "news", Autojoin: true}},
	}
	store := session.NewMemoryStore()
	h := newTestHandler(users, store)

	result, err := h.Login(ctx, loginBody("alice", "aabbcc"))
	require.NoError(t, err)
	require.NotEmpty(t, result.TokenHeader)
	require.Len(t, result.TokenHeader, 36) // uuid string form

	frames, err := codec.ReadFrames(result.Body)
	require.NoError(t, err)
	require.NotEmpty(t, frames)
	require.Equal(t, protocol.STOC_LoginReply, frames[0].ID)

	sess, err := store.GetSession(ctx, result.TokenHeader)
	require.NoError(t, err)
	require.Equal(t, int32(7), sess.ID)
}

func TestLoginUnknownUsernameRejects(t *testing.T) {
	ctx := context.Background()
	users := &fakeUsers{byName: map[string]db.User{}}
	store := session.NewMemoryStore()
	h := newTestHandler(users, store)

	result, err := h.Login(ctx, loginBody("ghost", "whatever"))
	require.NoError(t, err)
	require.Equal(t, "invalid username", result.TokenHeader)

	frames, err := codec.ReadFrames(result.Body)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	require.Equal(t, protocol.STOC_LoginReply, frames[0].ID)
}

func TestLoginWrongPasswordRejects(t *testing.T) {
	ctx := context.Background()
	users := &fakeUsers{
		byName: map[string]db.User{
			"alice": {ID: 7, Username: "alice", PasswordHash: hashPassword(t, "correct"), Country: "US"},
		},
	}
	store := session.NewMemoryStore()
	h := newTestHandler(users, store)

	result, err := h.Login(ctx, loginBody("alice", "wrong"))
	require.NoError(t, err)
	require.Equal(t, "invalid password", result.TokenHeader)
}

func TestLoginMissingStatsRejects(t *testing.T) {
	ctx := context.Background()
	users := &fakeUsers{
		byName: map[string]db.User{
			"alice": {ID: 7, Username: "alice", PasswordHash: hashPassword(t, "aabbcc"), Country: "US"},
		},
		statsBy: map[int32]db.Stats{},
	}
	store := session.NewMemoryStore()
	h := newTestHandler(users, store)

	result, err := h.Login(ctx, loginBody("alice", "aabbcc"))
	require.NoError(t, err)
	require.Equal(t, "invalid stats", result.TokenHeader)
}

func TestLoginFallsBackToChannelCacheWhenRelationalStoreFails(t *testing.T) {
	ctx := context.Background()
	users := &fakeUsers{
		byName: map[string]db.User{
			"alice": {ID: 7, Username: "alice", PasswordHash: hashPassword(t, "aabbcc"), Country: "US"},
		},
		statsBy:     map[int32]db.Stats{7: {UserID: 7}},
		channelsErr: db.ErrNotFound,
	}
	store := session.NewMemoryStore()
	h := newTestHandler(users, store).WithChannelCache(&fakeChannelCache{
		channels: []localcache.CachedChannel{{Name: "#osu", Topic: "default", Autojoin: true}},
	})

	result, err := h.Login(ctx, loginBody("alice", "aabbcc"))
	require.NoError(t, err)
	require.NotEmpty(t, result.TokenHeader)

	frames, err := codec.ReadFrames(result.Body)
	require.NoError(t, err)
	require.NotEmpty(t, frames)
}

func TestLoginChannelLookupFailsInternalWithoutCache(t *testing.T) {
	ctx := context.Background()
	users := &fakeUsers{
		byName: map[string]db.User{
			"alice": {ID: 7, Username: "alice", PasswordHash: hashPassword(t, "aabbcc"), Country: "US"},
		},
		statsBy:     map[int32]db.Stats{7: {UserID: 7}},
		channelsErr: db.ErrNotFound,
	}
	store := session.NewMemoryStore()
	h := newTestHandler(users, store)

	_, err := h.Login(ctx, loginBody("alice", "aabbcc"))
	require.Error(t, err)
}

func TestLoginMalformedBodyIsExternalError(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	h := newTestHandler(&fakeUsers{}, store)

	_, err := h.Login(ctx, []byte("no newlines here"))
	require.Error(t, err)
}
