package middleware

import (
	"go.uber.org/zap"

	"github.com/keshon/slashbot/pkg/cmd"
)

// Chain returns the middleware every routed command runs behind. The command
// logger is outermost so a recovered panic is still logged and recorded;
// rate-limited runs are recorded too.
func Chain(store HistoryAppender, log *zap.Logger, lim *Limiter) []cmd.Middleware {
	return []cmd.Middleware{
		WithCommandLogger(store, log),
		WithRecover(log),
		WithRateLimit(lim),
	}
}
