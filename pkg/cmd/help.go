package cmd

import (
	"context"
	"strings"
)

const (
	helpTitle       = "Available commands:"
	helpDescription = "display this help message"
)

// HelpLines renders one line per registered command in registration order,
// followed by the help entry itself:
//
//	testA (tA, A): Test command A
//	testB arg1 arg2 arg3:3: Test command B
//	help: display this help message
func HelpLines(r *Registry) []string {
	all := r.GetAll()
	lines := make([]string, 0, len(all)+1)
	for _, c := range all {
		var sb strings.Builder
		sb.WriteString(c.Name())
		if aliases := r.Aliases(c.Name()); len(aliases) > 0 {
			sb.WriteString(" (")
			sb.WriteString(strings.Join(aliases, ", "))
			sb.WriteString(")")
		}
		if spec := c.Spec(); spec.Len() > 0 {
			sb.WriteString(" ")
			sb.WriteString(spec.String())
		}
		sb.WriteString(": ")
		sb.WriteString(c.Description())
		lines = append(lines, sb.String())
	}
	return append(lines, HelpName+": "+helpDescription)
}

// HelpEnvelope wraps the help listing into a single ephemeral reply.
func HelpEnvelope(r *Registry) *Envelope {
	return Responder{}.Ephemeral(helpTitle, strings.Join(HelpLines(r), "\n"))
}

// helpCommand is synthesized by the router for "help", blank text and
// unknown names.
type helpCommand struct {
	registry *Registry
}

func (h *helpCommand) Name() string        { return HelpName }
func (h *helpCommand) Description() string { return helpDescription }
func (h *helpCommand) Spec() Spec          { return Spec{} }

func (h *helpCommand) Run(_ context.Context, inv *Invocation) {
	inv.Done(nil, HelpEnvelope(h.registry))
}
