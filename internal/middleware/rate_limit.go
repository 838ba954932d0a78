package middleware

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/keshon/slashbot/pkg/cmd"
)

// SlowDownMessage is the reply sent instead of running a rate-limited command.
const SlowDownMessage = "You're sending commands too quickly. Please wait a moment and try again."

// Limiter hands out one token bucket per user.
type Limiter struct {
	mu    sync.Mutex
	limit rate.Limit
	burst int
	users map[string]*rate.Limiter
}

// NewLimiter allows each user limit commands per second with the given burst.
func NewLimiter(limit rate.Limit, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limit: limit, burst: burst, users: make(map[string]*rate.Limiter)}
}

// Allow reports whether user may run a command now.
func (l *Limiter) Allow(user string) bool {
	l.mu.Lock()
	lim, ok := l.users[user]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.users[user] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// WithRateLimit skips the command and answers with an ephemeral notice when
// the invoking user is over the limit. All commands wrapped with the same
// Limiter share the user's budget.
func WithRateLimit(l *Limiter) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) {
			if !l.Allow(inv.Event.MetaString(cmd.MetaUserID)) {
				inv.Done(nil, inv.Reply.Ephemeral(SlowDownMessage))
				return
			}
			c.Run(ctx, inv)
		})
	}
}
