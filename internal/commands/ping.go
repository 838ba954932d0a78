package commands

import (
	"context"

	"github.com/keshon/slashbot/pkg/cmd"
)

type PingCommand struct{}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Pong!" }
func (c *PingCommand) Spec() cmd.Spec      { return cmd.Spec{} }

func (c *PingCommand) Run(_ context.Context, inv *cmd.Invocation) {
	inv.Done(nil, inv.Reply.Ephemeral("pong"))
}
