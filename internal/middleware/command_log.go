package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/keshon/slashbot/internal/storage"
	"github.com/keshon/slashbot/pkg/cmd"
)

// HistoryAppender stores routed commands. *storage.Storage implements it.
type HistoryAppender interface {
	AppendHistory(teamID string, rec storage.HistoryRecord) error
}

// WithCommandLogger records every completed run of a command: a log line
// and, when store is non-nil, a history record for the team.
func WithCommandLogger(store HistoryAppender, log *zap.Logger) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) {
			started := time.Now()
			ev := inv.Event
			done := inv.Done

			var once sync.Once
			next := *inv
			next.Done = func(err error, env *cmd.Envelope) {
				defer done(err, env)
				first := false
				once.Do(func() { first = true })
				if !first {
					return
				}

				fields := []zap.Field{
					zap.String("command", c.Name()),
					zap.String("user", ev.MetaString(cmd.MetaUserID)),
					zap.String("team", ev.MetaString(cmd.MetaTeamID)),
					zap.Duration("elapsed", time.Since(started)),
				}
				if err != nil {
					log.Warn("command failed", append(fields, zap.Error(err))...)
				} else {
					log.Info("command completed", fields...)
				}

				if store == nil {
					return
				}
				rec := storage.HistoryRecord{
					ID:          uuid.NewString(),
					ChannelID:   ev.MetaString(cmd.MetaChannelID),
					ChannelName: ev.MetaString(cmd.MetaChannelName),
					UserID:      ev.MetaString(cmd.MetaUserID),
					Username:    ev.MetaString(cmd.MetaUserName),
					Command:     c.Name(),
					Text:        ev.Body.Text,
					Failed:      err != nil,
					Datetime:    started,
				}
				if e := store.AppendHistory(ev.MetaString(cmd.MetaTeamID), rec); e != nil {
					log.Warn("failed to record command history", zap.String("command", c.Name()), zap.Error(e))
				}
			}
			c.Run(ctx, &next)
		})
	}
}
