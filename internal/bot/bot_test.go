package bot

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"bancho/server/internal/db"
)

func TestHelpCommand(t *testing.T) {
	b := New(nil, 1)
	reply := b.Handle(context.Background(), "alice", "!help")
	require.Contains(t, reply, "!roll")
}

func TestRollCommandWithinBounds(t *testing.T) {
	b := New(nil, 1)
	reply := b.Handle(context.Background(), "alice", "!roll 50")
	require.True(t, strings.HasPrefix(reply, "rolls "))
	n, err := strconv.Atoi(strings.Fields(reply)[1])
	require.NoError(t, err)
	require.True(t, n >= 1 && n <= 50)
}

func TestStatsCommandMissingLookup(t *testing.T) {
	b := New(nil, 1)
	reply := b.Handle(context.Background(), "alice", "!stats")
	require.Contains(t, reply, "no stats available")
}

func TestStatsCommandWithLookup(t *testing.T) {
	b := New(func(_ context.Context, username string) (db.Stats, bool) {
		require.Equal(t, "alice", username)
		return db.Stats{RankedScore: 1000, AvgAccuracy: 98.5, Performance: 5}, true
	}, 1)
	reply := b.Handle(context.Background(), "alice", "!stats")
	require.Contains(t, reply, "1000 ranked score")
}

func TestUnknownCommandReturnsEmpty(t *testing.T) {
	b := New(nil, 1)
	require.Empty(t, b.Handle(context.Background(), "alice", "hello there"))
}
