// Package webhook serves Slack slash commands over HTTP and delivers replies
// that take longer than Slack's reply window to the command's response_url.
package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/keshon/slashbot/pkg/cmd"
)

// DefaultReplyTimeout leaves headroom under Slack's 3 second limit.
const DefaultReplyTimeout = 2500 * time.Millisecond

// Handler routes slash command POSTs through a cmd.Router.
type Handler struct {
	router    *cmd.Router
	deliverer *Deliverer
	timeout   time.Duration
	log       *zap.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithDeliverer enables delayed replies. Without it a command that misses
// the reply window gets a 504.
func WithDeliverer(d *Deliverer) HandlerOption {
	return func(h *Handler) { h.deliverer = d }
}

// WithReplyTimeout sets how long the handler waits for an inline reply.
func WithReplyTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(log *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler returns an http.Handler for slash command requests.
func NewHandler(router *cmd.Router, opts ...HandlerOption) *Handler {
	h := &Handler{
		router:  router,
		timeout: DefaultReplyTimeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sc, err := slack.SlashCommandParse(r)
	if err != nil {
		h.log.Debug("bad slash command payload", zap.Error(err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	ev := EventFromSlash(sc)

	// Commands outlive the request when their reply is delivered later.
	runCtx := context.WithoutCancel(r.Context())
	if h.deliverer != nil {
		runCtx = h.deliverer.Context()
	}

	ch := make(chan cmd.Result, 1)
	go h.router.Route(runCtx, ev, func(res cmd.Result) { ch <- res })

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		h.write(w, res)
	case <-timer.C:
		h.late(w, sc, ch)
	case <-r.Context().Done():
		h.log.Debug("client went away", zap.String("command", sc.Command))
	}
}

func (h *Handler) write(w http.ResponseWriter, res cmd.Result) {
	switch {
	case res.Failed():
		http.Error(w, res.Failure, http.StatusUnauthorized)
	case res.Err != nil:
		h.log.Error("command failed", zap.Error(res.Err))
		http.Error(w, "command failed", http.StatusInternalServerError)
	case res.Envelope == nil:
		w.WriteHeader(http.StatusOK)
	default:
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res.Envelope); err != nil {
			h.log.Warn("writing reply", zap.Error(err))
		}
	}
}

// late acknowledges a slow command and hands its eventual result to the
// deliverer.
func (h *Handler) late(w http.ResponseWriter, sc slack.SlashCommand, ch <-chan cmd.Result) {
	if h.deliverer == nil || sc.ResponseURL == "" {
		http.Error(w, "command timed out", http.StatusGatewayTimeout)
		return
	}
	id, err := h.deliverer.Await(sc.ResponseURL, ch)
	if err != nil {
		h.log.Warn("cannot defer reply", zap.Error(err))
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	h.log.Debug("reply deferred", zap.String("command", sc.Command), zap.String("delivery", id))
	w.WriteHeader(http.StatusOK)
}
