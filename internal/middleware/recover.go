package middleware

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/keshon/slashbot/pkg/cmd"
)

// WithRecover turns a panic inside Run into a command error.
func WithRecover(log *zap.Logger) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("command panicked", zap.String("command", c.Name()), zap.Any("panic", r))
					inv.Done(fmt.Errorf("command %s panicked: %v", c.Name(), r), nil)
				}
			}()
			c.Run(ctx, inv)
		})
	}
}
