package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/keshon/slashbot/internal/config"
	"github.com/keshon/slashbot/internal/discord"
	"github.com/keshon/slashbot/internal/storage"
	v "github.com/keshon/slashbot/internal/version"
	"github.com/keshon/slashbot/internal/webhook"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Slack webhook and, when configured, the Discord bot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("starting", zap.String("app", v.AppName), zap.String("version", v.String()))

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		return err
	}
	defer store.Close()

	router, err := buildRouter(cfg, store, log)
	if err != nil {
		return err
	}

	var bot *discord.Bot
	if cfg.DiscordToken != "" {
		if bot, err = discord.New(cfg.DiscordToken, router, cfg.SlackToken, cfg.DiscordPrefix, log); err != nil {
			return err
		}
	}

	deliverer := webhook.NewDeliverer(log)
	defer deliverer.Close()

	handler := webhook.NewHandler(router,
		webhook.WithDeliverer(deliverer),
		webhook.WithReplyTimeout(cfg.ReplyTimeout),
		webhook.WithLogger(log),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return webhook.ListenAndServe(gctx, cfg.HTTPAddr, webhook.Mux(cfg.HTTPPath, handler), log)
	})
	if cfg.HistoryRetention > 0 {
		g.Go(func() error {
			storage.RunHistoryPruner(gctx, store, cfg.HistoryRetention, cfg.HistoryPruneInterval, log)
			return nil
		})
	}
	if bot != nil {
		g.Go(func() error { return bot.Run(gctx) })
	}

	err = g.Wait()
	log.Info("shut down", zap.Error(err))
	return err
}
