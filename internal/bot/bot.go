// Package bot implements the fixed command set for private messages
// addressed to the server's bot account (spec §4.6's "command stub",
// supplemented from the upstream implementation's bot command table).
package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"bancho/server/internal/db"
)

// StatsLookup resolves a username to its current stats row for the !stats
// command. The dispatcher's session store, not the relational store, is
// the source of truth for online players' live stats.
type StatsLookup func(ctx context.Context, username string) (db.Stats, bool)

// CommandLog records each recognized command invocation for later audit.
type CommandLog func(ctx context.Context, username, command string)

// Bot answers fixed commands. It holds no session state of its own.
type Bot struct {
	lookup StatsLookup
	rng    *rand.Rand
	logCmd CommandLog
}

// New returns a Bot. lookup may be nil, in which case !stats always
// replies that no stats are available.
func New(lookup StatsLookup, seed int64) *Bot {
	return &Bot{lookup: lookup, rng: rand.New(rand.NewSource(seed))}
}

// WithCommandLog attaches an audit log sink, returning b for chaining.
func (b *Bot) WithCommandLog(logCmd CommandLog) *Bot {
	b.logCmd = logCmd
	return b
}

// Handle dispatches message (as sent by from) to the matching command and
// returns the reply text, or "" if the message isn't a recognized command.
func (b *Bot) Handle(ctx context.Context, from, message string) string {
	fields := strings.Fields(message)
	if len(fields) == 0 {
		return ""
	}
	cmd := strings.ToLower(fields[0])
	var reply string
	switch cmd {
	case "!help":
		reply = "available commands: !help, !roll, !stats"
	case "!roll":
		reply = b.roll(fields)
	case "!stats":
		reply = b.stats(ctx, from, fields)
	default:
		return ""
	}
	if b.logCmd != nil {
		b.logCmd(ctx, from, cmd)
	}
	return reply
}

func (b *Bot) roll(fields []string) string {
	max := 100
	if len(fields) > 1 {
		var n int
		if _, err := fmt.Sscanf(fields[1], "%d", &n); err == nil && n > 0 {
			max = n
		}
	}
	return fmt.Sprintf("rolls %d point(s)", b.rng.Intn(max)+1)
}

func (b *Bot) stats(ctx context.Context, from string, fields []string) string {
	target := from
	if len(fields) > 1 {
		target = fields[1]
	}
	if b.lookup == nil {
		return fmt.Sprintf("no stats available for %s", target)
	}
	st, ok := b.lookup(ctx, target)
	if !ok {
		return fmt.Sprintf("%s is not online", target)
	}
	return fmt.Sprintf("%s: %d ranked score, %.2f%% accuracy, #%d", target, st.RankedScore, st.AvgAccuracy, st.Performance)
}
