// Package cmd provides a transport-agnostic slash command core: argument
// specifications, tokenization and binding, a registry with aliases, help
// rendering and a router that ties them together. How events arrive (Slack
// webhook, Discord message, CLI) is defined by adapters that build an Event
// and consume the Result.
package cmd

import "context"

// Done is called by a command exactly once with its outcome. A non-nil err is
// passed through the router untouched.
type Done func(err error, env *Envelope)

// Invocation carries everything a command needs for one run: the event (with
// Args already bound), the shared response helpers and the completion func.
type Invocation struct {
	Event *Event
	Reply Responder
	Done  Done
}

// Args returns the bound arguments of the invocation.
func (inv *Invocation) Args() Args {
	return inv.Event.Args
}

// Command is the universal contract: identity, argument spec and execution.
// Run may complete asynchronously; the router waits for Done, not for Run to
// return.
type Command interface {
	Name() string
	Description() string
	Spec() Spec
	Run(ctx context.Context, inv *Invocation)
}

// Handler is the function form of Command.Run.
type Handler func(ctx context.Context, inv *Invocation)

// Func is a Command assembled from plain values.
type Func struct {
	CommandName        string
	CommandDescription string
	ArgSpec            Spec
	Handler            Handler
}

func (f *Func) Name() string        { return f.CommandName }
func (f *Func) Description() string { return f.CommandDescription }
func (f *Func) Spec() Spec          { return f.ArgSpec }

func (f *Func) Run(ctx context.Context, inv *Invocation) {
	f.Handler(ctx, inv)
}
