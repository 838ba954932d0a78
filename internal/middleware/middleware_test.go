package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	"github.com/keshon/slashbot/internal/storage"
	"github.com/keshon/slashbot/pkg/cmd"
)

type memoryHistory struct {
	mu      sync.Mutex
	records map[string][]storage.HistoryRecord
	err     error
}

func (m *memoryHistory) AppendHistory(teamID string, rec storage.HistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.records == nil {
		m.records = map[string][]storage.HistoryRecord{}
	}
	m.records[teamID] = append(m.records[teamID], rec)
	return nil
}

func newRouter(t *testing.T, h cmd.Handler, mws ...cmd.Middleware) *cmd.Router {
	t.Helper()
	reg := cmd.NewRegistry()
	require.NoError(t, reg.Add("ping", []cmd.Arg{cmd.Splat("rest")}, "Ping", h, mws...))
	return cmd.NewRouter(reg)
}

func pong(_ context.Context, inv *cmd.Invocation) {
	inv.Done(nil, inv.Reply.Ephemeral("pong"))
}

func routeAs(t *testing.T, r *cmd.Router, user, text string) cmd.Result {
	t.Helper()
	var got []cmd.Result
	r.Route(context.Background(), &cmd.Event{
		Body: cmd.Body{Text: text},
		Meta: map[string]any{
			cmd.MetaUserID:    user,
			cmd.MetaUserName:  user + "-name",
			cmd.MetaTeamID:    "T1",
			cmd.MetaChannelID: "C1",
		},
	}, func(res cmd.Result) { got = append(got, res) })
	require.Len(t, got, 1)
	return got[0]
}

// =============================================================================
// COMMAND LOGGER
// =============================================================================

func TestCommandLogger_RecordsHistory(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	hist := &memoryHistory{}
	r := newRouter(t, pong, WithCommandLogger(hist, zap.New(core)))

	res := routeAs(t, r, "U1", "ping a b")
	assert.Equal(t, "pong", res.Envelope.Text)

	require.Len(t, hist.records["T1"], 1)
	rec := hist.records["T1"][0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "ping", rec.Command)
	assert.Equal(t, "ping a b", rec.Text)
	assert.Equal(t, "U1", rec.UserID)
	assert.Equal(t, "U1-name", rec.Username)
	assert.Equal(t, "C1", rec.ChannelID)
	assert.False(t, rec.Failed)
	assert.False(t, rec.Datetime.IsZero())

	assert.Equal(t, 1, logs.FilterMessage("command completed").Len())
}

func TestCommandLogger_HandlerError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	hist := &memoryHistory{}
	boom := errors.New("boom")
	r := newRouter(t, func(_ context.Context, inv *cmd.Invocation) {
		inv.Done(boom, nil)
	}, WithCommandLogger(hist, zap.New(core)))

	res := routeAs(t, r, "U1", "ping")
	assert.Same(t, boom, res.Err)
	require.Len(t, hist.records["T1"], 1)
	assert.True(t, hist.records["T1"][0].Failed)
	assert.Equal(t, 1, logs.FilterMessage("command failed").Len())
}

func TestCommandLogger_StoreErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	hist := &memoryHistory{err: errors.New("disk full")}
	r := newRouter(t, pong, WithCommandLogger(hist, zap.New(core)))

	res := routeAs(t, r, "U1", "ping")
	assert.Equal(t, "pong", res.Envelope.Text)
	assert.Equal(t, 1, logs.FilterMessage("failed to record command history").Len())
}

func TestCommandLogger_NilStore(t *testing.T) {
	r := newRouter(t, pong, WithCommandLogger(nil, zap.NewNop()))
	res := routeAs(t, r, "U1", "ping")
	assert.Equal(t, "pong", res.Envelope.Text)
}

// =============================================================================
// RATE LIMIT
// =============================================================================

func TestRateLimit_PerUser(t *testing.T) {
	lim := NewLimiter(rate.Every(1<<62), 2)
	r := newRouter(t, pong, WithRateLimit(lim))

	assert.Equal(t, "pong", routeAs(t, r, "U1", "ping").Envelope.Text)
	assert.Equal(t, "pong", routeAs(t, r, "U1", "ping").Envelope.Text)

	res := routeAs(t, r, "U1", "ping")
	assert.Equal(t, &cmd.Envelope{Text: SlowDownMessage, ResponseType: cmd.Ephemeral}, res.Envelope)

	assert.Equal(t, "pong", routeAs(t, r, "U2", "ping").Envelope.Text)
}

func TestRateLimit_MinimumBurst(t *testing.T) {
	lim := NewLimiter(rate.Every(1<<62), 0)
	assert.True(t, lim.Allow("U1"))
	assert.False(t, lim.Allow("U1"))
}

// =============================================================================
// RECOVER
// =============================================================================

func TestRecover(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := newRouter(t, func(context.Context, *cmd.Invocation) {
		panic("kaboom")
	}, WithRecover(zap.New(core)))

	res := routeAs(t, r, "U1", "ping")
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "kaboom")
	assert.Nil(t, res.Envelope)
	assert.Equal(t, 1, logs.FilterMessage("command panicked").Len())
}

func TestRecover_PassThrough(t *testing.T) {
	r := newRouter(t, pong, WithRecover(zap.NewNop()))
	res := routeAs(t, r, "U1", "ping")
	assert.NoError(t, res.Err)
	assert.Equal(t, "pong", res.Envelope.Text)
}

// =============================================================================
// CHAIN
// =============================================================================

func TestChain_PanicIsRecordedAsFailure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	hist := &memoryHistory{}
	r := newRouter(t, func(context.Context, *cmd.Invocation) {
		panic("kaboom")
	}, Chain(hist, zap.New(core), NewLimiter(rate.Inf, 1))...)

	res := routeAs(t, r, "U1", "ping")
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "kaboom")

	require.Len(t, hist.records["T1"], 1)
	assert.True(t, hist.records["T1"][0].Failed)
	assert.Equal(t, 1, logs.FilterMessage("command failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("command panicked").Len())
}

func TestChain_RateLimitedRunIsRecorded(t *testing.T) {
	hist := &memoryHistory{}
	r := newRouter(t, pong, Chain(hist, zap.NewNop(), NewLimiter(rate.Every(1<<62), 1))...)

	assert.Equal(t, "pong", routeAs(t, r, "U1", "ping").Envelope.Text)
	assert.Equal(t, SlowDownMessage, routeAs(t, r, "U1", "ping").Envelope.Text)
	assert.Len(t, hist.records["T1"], 2)
}
