package main

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/keshon/slashbot/internal/commands"
	"github.com/keshon/slashbot/internal/config"
	"github.com/keshon/slashbot/internal/middleware"
	"github.com/keshon/slashbot/internal/storage"
	"github.com/keshon/slashbot/pkg/cmd"
)

// buildRouter registers the built-in and canned commands behind the standard
// middleware chain. store may be nil.
func buildRouter(cfg *config.Config, store *storage.Storage, log *zap.Logger) (*cmd.Router, error) {
	mws := middleware.Chain(historyAppender(store), log,
		middleware.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst))

	reg := cmd.NewRegistry()
	if err := commands.Register(reg, historyReader(store), mws...); err != nil {
		return nil, err
	}

	if cfg.CommandsFile != "" {
		defs, err := commands.LoadCanned(cfg.CommandsFile)
		if err != nil {
			return nil, err
		}
		if err := commands.RegisterCanned(reg, defs, mws...); err != nil {
			return nil, fmt.Errorf("canned commands: %w", err)
		}
		log.Info("loaded canned commands", zap.String("file", cfg.CommandsFile), zap.Int("count", len(defs)))
	}

	return cmd.NewRouter(reg, cmd.WithToken(cfg.SlackToken), cmd.WithLogger(log)), nil
}

// Typed nil pointers must not leak into the interfaces.
func historyAppender(store *storage.Storage) middleware.HistoryAppender {
	if store == nil {
		return nil
	}
	return store
}

func historyReader(store *storage.Storage) commands.HistoryReader {
	if store == nil {
		return nil
	}
	return store
}
