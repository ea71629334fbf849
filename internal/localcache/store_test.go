package localcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeedAndListChannelsRoundTrip(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SeedChannels(ctx, []CachedChannel{
		{Name: "#osu", Topic: "default channel", Autojoin: true},
		{Name: "#announce", Topic: "news", Autojoin: false},
	}))

	channels, err := store.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 2)
	require.Equal(t, "#announce", channels[0].Name)
	require.False(t, channels[0].Autojoin)
	require.Equal(t, "#osu", channels[1].Name)
	require.True(t, channels[1].Autojoin)
}

func TestReseedReplacesPreviousChannels(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SeedChannels(ctx, []CachedChannel{{Name: "#old"}}))
	require.NoError(t, store.SeedChannels(ctx, []CachedChannel{{Name: "#new"}}))

	channels, err := store.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	require.Equal(t, "#new", channels[0].Name)
}

func TestLogAndRecentCommands(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.LogCommand(ctx, "alice", "!roll"))
	require.NoError(t, store.LogCommand(ctx, "alice", "!stats"))
	require.NoError(t, store.LogCommand(ctx, "bob", "!help"))

	commands, err := store.RecentCommands(ctx, "alice", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"!stats", "!roll"}, commands)
}
