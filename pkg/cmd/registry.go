package cmd

import (
	"errors"
	"fmt"
	"sync"
)

// HelpName is the reserved name of the synthesized help command.
const HelpName = "help"

var (
	ErrEmptyName    = errors.New("command name is empty")
	ErrReservedName = errors.New("command name is reserved")
	ErrNilHandler   = errors.New("command handler is nil")
)

// Registry stores commands by canonical name, in registration order, plus an
// alias table. It does not perform dispatch; the Router does.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	commands map[string]Command
	aliases  map[string]string
	byTarget map[string][]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
		byTarget: make(map[string][]string),
	}
}

// Add compiles args and registers a handler under name. A malformed spec is
// reported here, never at request time.
func (r *Registry) Add(name string, args []Arg, description string, h Handler, mws ...Middleware) error {
	if h == nil {
		return fmt.Errorf("command %q: %w", name, ErrNilHandler)
	}
	spec, err := Compile(args...)
	if err != nil {
		return fmt.Errorf("command %q: %w", name, err)
	}
	return r.Register(&Func{
		CommandName:        name,
		CommandDescription: description,
		ArgSpec:            spec,
		Handler:            h,
	}, mws...)
}

// Register adds a command wrapped in mws (first is outermost). Registering a
// name again replaces the command but keeps its original position.
func (r *Registry) Register(c Command, mws ...Middleware) error {
	name := c.Name()
	switch name {
	case "":
		return ErrEmptyName
	case HelpName:
		return fmt.Errorf("command %q: %w", name, ErrReservedName)
	}
	c = Apply(c, mws...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[name]; !ok {
		r.order = append(r.order, name)
	}
	r.commands[name] = c
	return nil
}

// Alias makes each alias resolve to name. name does not have to be
// registered yet; an alias to a missing command resolves to nothing. If any
// alias is invalid none of them are added.
func (r *Registry) Alias(name string, aliases ...string) error {
	if name == "" {
		return ErrEmptyName
	}
	for _, a := range aliases {
		switch a {
		case "":
			return fmt.Errorf("alias of %q: %w", name, ErrEmptyName)
		case HelpName:
			return fmt.Errorf("alias of %q: %w", name, ErrReservedName)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range aliases {
		if prev, ok := r.aliases[a]; ok {
			if prev == name {
				continue
			}
			r.byTarget[prev] = remove(r.byTarget[prev], a)
		}
		r.aliases[a] = name
		r.byTarget[name] = append(r.byTarget[name], a)
	}
	return nil
}

// Resolve looks name up in the alias table, then among canonical names.
func (r *Registry) Resolve(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	c, ok := r.commands[name]
	return c, ok
}

// Get returns the command registered under the canonical name, or nil.
func (r *Registry) Get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[name]
}

// Aliases returns the aliases of a canonical name in declaration order.
func (r *Registry) Aliases(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.byTarget[name]))
	copy(out, r.byTarget[name])
	return out
}

// GetAll returns all registered commands in registration order.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.commands[name])
	}
	return list
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
