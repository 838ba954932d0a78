package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpLines(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add("testA", nil, "Test command A", reply("A")))
	require.NoError(t, reg.Add("testB", []Arg{Simple("arg1"), Simple("arg2"), Default("arg3", "3")}, "Test command B", reply("B")))
	require.NoError(t, reg.Add("testC", []Arg{Simple("arg1"), Splat("arg2")}, "Test command C", reply("C")))
	require.NoError(t, reg.Alias("testA", "tA", "A"))

	assert.Equal(t, []string{
		"testA (tA, A): Test command A",
		"testB arg1 arg2 arg3:3: Test command B",
		"testC arg1 arg2...: Test command C",
		"help: display this help message",
	}, HelpLines(reg))
}

func TestHelpLines_Empty(t *testing.T) {
	assert.Equal(t, []string{"help: display this help message"}, HelpLines(NewRegistry()))
}

func TestHelpEnvelope(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add("ping", nil, "Ping", reply("pong")))

	env := HelpEnvelope(reg)
	assert.Equal(t, &Envelope{
		Text:         "Available commands:",
		Attachments:  []Attachment{{Text: strings.Join(HelpLines(reg), "\n")}},
		ResponseType: Ephemeral,
	}, env)
}

func TestHelpCommand_ReflectsLateRegistration(t *testing.T) {
	reg := NewRegistry()
	help := &helpCommand{registry: reg}
	require.NoError(t, reg.Add("late", nil, "Late", reply("x")))

	var got *Envelope
	help.Run(context.Background(), &Invocation{Event: &Event{}, Done: func(_ error, env *Envelope) { got = env }})
	require.NotNil(t, got)
	assert.Equal(t, "late: Late\nhelp: display this help message", got.Attachments[0].Text)
}
