// Package commands holds the commands shipped with slashbot.
package commands

import (
	"fmt"

	"github.com/keshon/slashbot/internal/storage"
	"github.com/keshon/slashbot/pkg/cmd"
)

// HistoryReader reads routed command history. *storage.Storage implements it.
type HistoryReader interface {
	History(teamID string, limit int) ([]storage.HistoryRecord, error)
}

// Register adds the built-in commands and their aliases to reg. history may
// be nil, in which case the history command is left out.
func Register(reg *cmd.Registry, history HistoryReader, mws ...cmd.Middleware) error {
	builtins := []cmd.Command{
		&EchoCommand{},
		&PingCommand{},
		NewRollCommand(nil),
	}
	if history != nil {
		builtins = append(builtins, &HistoryCommand{Store: history})
	}

	for _, c := range builtins {
		if err := reg.Register(c, mws...); err != nil {
			return fmt.Errorf("register %s: %w", c.Name(), err)
		}
	}
	if err := reg.Alias("ping", "p"); err != nil {
		return err
	}
	return reg.Alias("roll", "dice")
}
