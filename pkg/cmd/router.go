package cmd

import (
	"context"
	"crypto/subtle"
	"sync"

	"go.uber.org/zap"
)

// InvalidTokenMessage is the failure reported when the inbound token does not
// match the configured one.
const InvalidTokenMessage = "Invalid Slack token"

// Router turns an Event into a Result: token check, tokenize, resolve, bind,
// dispatch.
type Router struct {
	registry *Registry
	token    string
	log      *zap.Logger
	help     Command
}

// Option configures a Router.
type Option func(*Router)

// WithToken sets the shared secret every event must carry. An empty token
// disables the check.
func WithToken(token string) Option {
	return func(r *Router) { r.token = token }
}

// WithLogger sets the logger used for routing decisions.
func WithLogger(log *zap.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRouter returns a router dispatching to commands in reg.
func NewRouter(reg *Registry, opts ...Option) *Router {
	r := &Router{
		registry: reg,
		log:      zap.NewNop(),
		help:     &helpCommand{registry: reg},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the registry the router dispatches to.
func (r *Router) Registry() *Registry { return r.registry }

// Route handles ev and reports the outcome through cb exactly once, unless
// the command never calls Done. Args are bound onto ev itself, and the same
// ev is handed to the command. Route places no deadline on the command.
func (r *Router) Route(ctx context.Context, ev *Event, cb func(Result)) {
	if !r.authorized(ev.Body.Token) {
		r.log.Warn("rejected command: token mismatch")
		cb(Result{Failure: InvalidTokenMessage})
		return
	}

	name, tail := SplitCommand(ev.Body.Text)
	c := r.resolve(name)
	ev.Args = Bind(c.Spec(), tail)

	r.log.Debug("routing command",
		zap.String("input", name),
		zap.String("command", c.Name()),
		zap.Int("tokens", len(tail)))

	var once sync.Once
	done := func(err error, env *Envelope) {
		once.Do(func() { cb(Result{Err: err, Envelope: env}) })
	}
	c.Run(ctx, &Invocation{Event: ev, Reply: Responder{}, Done: done})
}

// Wait routes ev and blocks until the command calls Done or ctx is done. In
// the latter case the command keeps running and its result is discarded.
func (r *Router) Wait(ctx context.Context, ev *Event) (Result, error) {
	ch := make(chan Result, 1)
	go r.Route(ctx, ev, func(res Result) { ch <- res })
	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (r *Router) authorized(token string) bool {
	if r.token == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(r.token), []byte(token)) == 1
}

func (r *Router) resolve(name string) Command {
	if name == "" || name == HelpName {
		return r.help
	}
	if c, ok := r.registry.Resolve(name); ok {
		return c
	}
	return r.help
}
