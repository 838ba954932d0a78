package commands

import (
	"context"
	"strings"

	"github.com/keshon/slashbot/pkg/cmd"
)

var echoSpec = cmd.MustCompile(cmd.Simple("title"), cmd.Default("lastName", "User"), cmd.Splat("words"))

// EchoCommand greets the caller: "echo Sir User how are you" answers
// "Hello Sir User, how are you".
type EchoCommand struct{}

func (c *EchoCommand) Name() string        { return "echo" }
func (c *EchoCommand) Description() string { return "Greetings" }
func (c *EchoCommand) Spec() cmd.Spec      { return echoSpec }

func (c *EchoCommand) Run(_ context.Context, inv *cmd.Invocation) {
	args := inv.Args()
	title, _ := args.String("title")
	lastName, _ := args.String("lastName")

	response := "Hello " + title + " " + lastName
	if words := args.Strings("words"); len(words) > 0 {
		response += ", " + strings.Join(words, " ")
	}
	inv.Done(nil, inv.Reply.Ephemeral(response))
}
