package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"bancho/server/internal/auth"
	"bancho/server/internal/bot"
	"bancho/server/internal/config"
	"bancho/server/internal/db"
	"bancho/server/internal/dispatch"
	"bancho/server/internal/httpapi"
	"bancho/server/internal/localcache"
	"bancho/server/internal/metrics"
	"bancho/server/internal/presence"
	"bancho/server/internal/session"
)

// logLevels maps spec §6's log_level vocabulary onto slog levels. "trace"
// has no slog equivalent, so it is mapped one tier below Debug.
var logLevels = map[string]slog.Level{
	"error": slog.LevelError,
	"warn":  slog.LevelWarn,
	"info":  slog.LevelInfo,
	"debug": slog.LevelDebug,
	"trace": slog.LevelDebug - 4,
}

func configureLogging(level string) {
	lvl, ok := logLevels[strings.ToLower(level)]
	if !ok {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.EqualFold(os.Getenv("APP_LOG_FORMAT"), "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (optional; env vars and defaults fill in the rest)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	configureLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		slog.Info("shutting down")
		cancel()
	}()

	relational, err := db.Open(cfg.DB.MySQLURL)
	if err != nil {
		slog.Error("open relational store", "error", err)
		os.Exit(1)
	}
	defer relational.Close()

	sessions, err := session.NewRedisStore(ctx, cfg.DB.RedisURL)
	if err != nil {
		slog.Error("open session store", "error", err)
		os.Exit(1)
	}
	defer sessions.Close()

	cache, err := localcache.Open(cfg.SQLite.Path)
	if err != nil {
		slog.Error("open local cache", "error", err)
		os.Exit(1)
	}
	defer cache.Close()

	if channels, err := relational.ListChannels(ctx); err != nil {
		slog.Warn("seed local channel cache: relational store unreachable at startup", "error", err)
	} else {
		cached := make([]localcache.CachedChannel, len(channels))
		for i, ch := range channels {
			cached[i] = localcache.CachedChannel{Name: ch.Name, Topic: ch.Topic, Autojoin: ch.Autojoin}
		}
		if err := cache.SeedChannels(ctx, cached); err != nil {
			slog.Warn("seed local channel cache", "error", err)
		}
	}

	m := metrics.New()
	pres := presence.New(sessions, slog.Default(), m.PresenceFanoutErr)

	statsLookup := func(ctx context.Context, username string) (db.Stats, bool) {
		tokens, err := sessions.ListTokens(ctx)
		if err != nil {
			return db.Stats{}, false
		}
		for _, token := range tokens {
			sess, err := sessions.GetSession(ctx, token)
			if err != nil {
				continue
			}
			if sess.Presence.Username == username {
				return db.Stats{
					UserID:      sess.ID,
					RankedScore: sess.Stats.RankedScore,
					TotalScore:  sess.Stats.TotalScore,
					AvgAccuracy: sess.Stats.Accuracy,
					Performance: sess.Stats.Performance,
				}, true
			}
		}
		return db.Stats{}, false
	}
	commandBot := bot.New(statsLookup, 1).WithCommandLog(func(ctx context.Context, username, command string) {
		if err := cache.LogCommand(ctx, username, command); err != nil {
			slog.Warn("log bot command", "username", username, "command", command, "error", err)
		}
	})

	authHandler := auth.New(relational, sessions, pres, slog.Default(), m.LoginAttempts).WithChannelCache(cache)
	dispatcher := dispatch.New(sessions, pres, slog.Default(), commandBot.Handle, m.PacketsDispatched)

	server := httpapi.New(authHandler, dispatcher, cfg.Telem.Endpoint)

	slog.Info("listening", "addr", cfg.Addr())
	if err := server.Run(ctx, cfg.Addr()); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
