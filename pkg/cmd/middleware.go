package cmd

// Middleware wraps a command (e.g. logging, rate limiting, panic recovery).
// The wrapped value is still a Command.
type Middleware func(Command) Command

// Apply applies middlewares in order; the first in the list is the outermost.
func Apply(c Command, mws ...Middleware) Command {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}
