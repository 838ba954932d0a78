package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sink records what the router reports for one request.
type sink struct {
	results []Result
}

func (s *sink) callback(r Result) { s.results = append(s.results, r) }

func (s *sink) only(t *testing.T) Result {
	t.Helper()
	require.Len(t, s.results, 1)
	return s.results[0]
}

func route(t *testing.T, r *Router, ev *Event) Result {
	t.Helper()
	var s sink
	r.Route(context.Background(), ev, s.callback)
	return s.only(t)
}

func textEvent(token, text string) *Event {
	return &Event{Body: Body{Token: token, Text: text}}
}

// newTestbot registers the commands used throughout these tests.
func newTestbot(t *testing.T) (*Router, *Registry) {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.Add("testA", nil, "Test command A", func(_ context.Context, inv *Invocation) {
		inv.Done(nil, inv.Reply.Ephemeral("A response"))
	}))
	require.NoError(t, reg.Add("testB", []Arg{Simple("arg1"), Simple("arg2"), Default("arg3", "3")}, "Test command B",
		func(_ context.Context, inv *Invocation) {
			inv.Done(nil, inv.Reply.Ephemeral("B response"))
		}))
	require.NoError(t, reg.Add("testC", []Arg{Simple("arg1"), Splat("arg2")}, "Test command C",
		func(_ context.Context, inv *Invocation) {
			inv.Done(nil, inv.Reply.Ephemeral(strings.Join(inv.Args().Strings("arg2"), " ")))
		}))
	require.NoError(t, reg.Alias("testA", "tA", "A"))
	return NewRouter(reg, WithToken("token")), reg
}

var testbotHelp = &Envelope{
	Text: "Available commands:",
	Attachments: []Attachment{{Text: strings.Join([]string{
		"testA (tA, A): Test command A",
		"testB arg1 arg2 arg3:3: Test command B",
		"testC arg1 arg2...: Test command C",
		"help: display this help message",
	}, "\n")}},
	ResponseType: Ephemeral,
}

// =============================================================================
// TOKEN CHECK
// =============================================================================

func TestRouter_InvalidToken(t *testing.T) {
	r, _ := newTestbot(t)
	res := route(t, r, textEvent("foo", "help"))
	assert.True(t, res.Failed())
	assert.Equal(t, "Invalid Slack token", res.Failure)
	assert.Nil(t, res.Envelope)
}

func TestRouter_InvalidTokenNeverDispatches(t *testing.T) {
	reg := NewRegistry()
	called := false
	require.NoError(t, reg.Add("test", nil, "Test", func(_ context.Context, inv *Invocation) {
		called = true
		inv.Done(nil, nil)
	}))
	r := NewRouter(reg, WithToken("token"))

	for _, tok := range []string{"", "tokenx", "Token"} {
		res := route(t, r, textEvent(tok, "test"))
		assert.Equal(t, InvalidTokenMessage, res.Failure)
	}
	assert.False(t, called)
}

func TestRouter_NoTokenConfigured(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add("test", nil, "Test", func(_ context.Context, inv *Invocation) {
		inv.Done(nil, inv.Reply.Ephemeral("test"))
	}))
	r := NewRouter(reg)

	for _, tok := range []string{"", "anything"} {
		res := route(t, r, textEvent(tok, "test"))
		assert.False(t, res.Failed())
		assert.NoError(t, res.Err)
		assert.Equal(t, Responder{}.Ephemeral("test"), res.Envelope)
	}
}

// =============================================================================
// HELP
// =============================================================================

func TestRouter_Help(t *testing.T) {
	tests := map[string]string{
		"literal help":    "help",
		"empty text":      "",
		"blank text":      "   ",
		"unknown command": "invalid",
		"unknown w/ args": "invalid with args",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			r, _ := newTestbot(t)
			res := route(t, r, textEvent("token", text))
			require.NoError(t, res.Err)
			if diff := cmp.Diff(testbotHelp, res.Envelope); diff != "" {
				t.Errorf("help envelope mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// =============================================================================
// DISPATCH
// =============================================================================

func TestRouter_RoutesByName(t *testing.T) {
	r, _ := newTestbot(t)
	res := route(t, r, textEvent("token", "testA"))
	assert.Equal(t, &Envelope{Text: "A response", ResponseType: Ephemeral}, res.Envelope)
}

func TestRouter_AliasIsTransparent(t *testing.T) {
	r, _ := newTestbot(t)
	want := route(t, r, textEvent("token", "testA"))
	for _, alias := range []string{"tA", "A"} {
		assert.Equal(t, want, route(t, r, textEvent("token", alias)), alias)
	}
}

func TestRouter_AliasBindsSameArgs(t *testing.T) {
	reg := NewRegistry()
	var seen []Args
	require.NoError(t, reg.Add("testC", []Arg{Simple("arg1"), Splat("arg2")}, "C", func(_ context.Context, inv *Invocation) {
		seen = append(seen, inv.Args())
		inv.Done(nil, nil)
	}))
	require.NoError(t, reg.Alias("testC", "c"))
	r := NewRouter(reg)

	route(t, r, textEvent("", "testC one two three"))
	route(t, r, textEvent("", "c one two three"))
	require.Len(t, seen, 2)
	assert.Equal(t, seen[0], seen[1])
}

func TestRouter_Splat(t *testing.T) {
	r, _ := newTestbot(t)
	res := route(t, r, textEvent("token", "testC these are all my words"))
	assert.Equal(t, &Envelope{Text: "are all my words", ResponseType: Ephemeral}, res.Envelope)
}

func TestRouter_SplatSingleToken(t *testing.T) {
	r, _ := newTestbot(t)
	res := route(t, r, textEvent("token", "testC arg1 arg2"))
	assert.Equal(t, &Envelope{Text: "arg2", ResponseType: Ephemeral}, res.Envelope)
}

func TestRouter_PassesEntireEvent(t *testing.T) {
	reg := NewRegistry()
	var got *Event
	require.NoError(t, reg.Add("testC", []Arg{Simple("arg1"), Splat("arg2")}, "C", func(_ context.Context, inv *Invocation) {
		got = inv.Event
		inv.Done(nil, nil)
	}))
	r := NewRouter(reg, WithToken("token"))

	ev := &Event{
		Body: Body{Token: "token", Text: "testC arg1 arg2"},
		Meta: map[string]any{"foo": "bar"},
	}
	route(t, r, ev)

	require.Same(t, ev, got)
	assert.Equal(t, &Event{
		Body: Body{Token: "token", Text: "testC arg1 arg2"},
		Args: Args{"arg1": "arg1", "arg2": []string{"arg2"}},
		Meta: map[string]any{"foo": "bar"},
	}, got)
	assert.Equal(t, "bar", got.MetaString("foo"))
	assert.Equal(t, "", got.MetaString("missing"))
}

func TestRouter_EchoExample(t *testing.T) {
	reg := NewRegistry()
	args := []Arg{Simple("title"), Default("lastName", "User"), Splat("words")}
	require.NoError(t, reg.Add("echo", args, "Greetings", func(_ context.Context, inv *Invocation) {
		title, _ := inv.Args().String("title")
		last, _ := inv.Args().String("lastName")
		resp := "Hello " + title + " " + last
		if words := inv.Args().Strings("words"); len(words) > 0 {
			resp += ", " + strings.Join(words, " ")
		}
		inv.Done(nil, inv.Reply.Ephemeral(resp))
	}))
	r := NewRouter(reg, WithToken("token"))

	res := route(t, r, textEvent("token", "echo Sir User how are you today?"))
	assert.Equal(t, &Envelope{Text: "Hello Sir User, how are you today?", ResponseType: Ephemeral}, res.Envelope)

	res = route(t, r, textEvent("token", "echo Madam"))
	assert.Equal(t, "Hello Madam User", res.Envelope.Text)
}

func TestRouter_HandlerErrorPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	reg := NewRegistry()
	env := &Envelope{Text: "partial", ResponseType: InChannel}
	require.NoError(t, reg.Add("fail", nil, "Fails", func(_ context.Context, inv *Invocation) {
		inv.Done(boom, env)
	}))
	r := NewRouter(reg)

	res := route(t, r, textEvent("", "fail"))
	assert.False(t, res.Failed())
	assert.Same(t, boom, res.Err)
	assert.Same(t, env, res.Envelope)
}

func TestRouter_OnlyFirstDoneCounts(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add("twice", nil, "Twice", func(_ context.Context, inv *Invocation) {
		inv.Done(nil, inv.Reply.Ephemeral("first"))
		inv.Done(nil, inv.Reply.Ephemeral("second"))
	}))
	r := NewRouter(reg)

	res := route(t, r, textEvent("", "twice"))
	assert.Equal(t, "first", res.Envelope.Text)
}

func TestRouter_AsyncCompletion(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add("slow", nil, "Slow", func(_ context.Context, inv *Invocation) {
		go func() {
			time.Sleep(10 * time.Millisecond)
			inv.Done(nil, inv.Reply.InChannel("later"))
		}()
	}))
	r := NewRouter(reg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := r.Wait(ctx, textEvent("", "slow"))
	require.NoError(t, err)
	assert.Equal(t, &Envelope{Text: "later", ResponseType: InChannel}, res.Envelope)
}

func TestRouter_WaitHonorsContext(t *testing.T) {
	reg := NewRegistry()
	release := make(chan struct{})
	require.NoError(t, reg.Add("never", nil, "Never answers", func(_ context.Context, inv *Invocation) {
		<-release
	}))
	r := NewRouter(reg)
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := r.Wait(ctx, textEvent("", "never"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRouter_Registry(t *testing.T) {
	r, reg := newTestbot(t)
	assert.Same(t, reg, r.Registry())
}
