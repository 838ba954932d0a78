package webhook

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/keshon/slashbot/pkg/cmd"
)

// ErrDelivererClosed is returned when work is handed to a closed Deliverer.
var ErrDelivererClosed = errors.New("deliverer is closed")

// PostFunc posts a message to a Slack response_url.
type PostFunc func(ctx context.Context, url string, msg *slack.WebhookMessage) error

// Deliverer posts replies that missed the inline reply window to their
// response_url. Every pending delivery is tracked by id and cancelled on
// Close. It is safe for concurrent use.
type Deliverer struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[string]context.CancelFunc
	closed  bool

	post    PostFunc
	limiter *rate.Limiter
	retry   RetryConfig
	wait    time.Duration
	log     *zap.Logger
}

// DelivererOption configures a Deliverer.
type DelivererOption func(*Deliverer)

// WithPoster replaces slack.PostWebhookContext.
func WithPoster(post PostFunc) DelivererOption {
	return func(d *Deliverer) { d.post = post }
}

// WithRetry sets the retry policy for each delivery.
func WithRetry(cfg RetryConfig) DelivererOption {
	return func(d *Deliverer) { d.retry = cfg }
}

// WithRate paces posts across all deliveries.
func WithRate(limit rate.Limit, burst int) DelivererOption {
	return func(d *Deliverer) { d.limiter = rate.NewLimiter(limit, burst) }
}

// WithMaxWait bounds how long a delivery waits for a slow command.
func WithMaxWait(wait time.Duration) DelivererOption {
	return func(d *Deliverer) { d.wait = wait }
}

// NewDeliverer returns a running Deliverer. Call Close to stop it.
func NewDeliverer(log *zap.Logger, opts ...DelivererOption) *Deliverer {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Deliverer{
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[string]context.CancelFunc),
		post:    slack.PostWebhookContext,
		limiter: rate.NewLimiter(rate.Limit(1), 5),
		retry:   DefaultRetryConfig(),
		wait:    30 * time.Minute,
		log:     log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Context is cancelled when the Deliverer closes. Commands whose replies may
// be delivered late should run under it rather than under a request context.
func (d *Deliverer) Context() context.Context {
	return d.ctx
}

// Await waits in the background for a result on ch and posts its envelope to
// url. It returns the id of the pending delivery.
func (d *Deliverer) Await(url string, ch <-chan cmd.Result) (string, error) {
	id := uuid.NewString()
	ctx, err := d.start(id)
	if err != nil {
		return "", err
	}

	go func() {
		defer d.finish(id)

		timer := time.NewTimer(d.wait)
		defer timer.Stop()

		var res cmd.Result
		select {
		case res = <-ch:
		case <-timer.C:
			d.log.Warn("command never answered", zap.String("delivery", id))
			return
		case <-ctx.Done():
			return
		}

		if res.Err != nil {
			d.log.Error("delayed command failed", zap.String("delivery", id), zap.Error(res.Err))
			return
		}
		if res.Envelope == nil {
			return
		}
		if err := d.deliver(ctx, id, url, res.Envelope); err != nil {
			d.log.Error("delayed reply not delivered", zap.String("delivery", id), zap.Error(err))
		}
	}()
	return id, nil
}

// Pending returns the ids of deliveries still in flight, sorted.
func (d *Deliverer) Pending() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, 0, len(d.pending))
	for id := range d.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close cancels every pending delivery and waits for them to return.
func (d *Deliverer) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

func (d *Deliverer) deliver(ctx context.Context, id, url string, env *cmd.Envelope) error {
	msg := webhookMessage(env)
	return withRetry(ctx, d.retry, d.limiter, func() error {
		return d.post(ctx, url, msg)
	}, func(attempt int, err error, wait time.Duration) {
		d.log.Warn("retrying delayed reply",
			zap.String("delivery", id),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
}

func (d *Deliverer) start(id string) (context.Context, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDelivererClosed
	}
	ctx, cancel := context.WithCancel(d.ctx)
	d.pending[id] = cancel
	d.wg.Add(1)
	return ctx, nil
}

func (d *Deliverer) finish(id string) {
	d.mu.Lock()
	if cancel, ok := d.pending[id]; ok {
		cancel()
		delete(d.pending, id)
	}
	d.mu.Unlock()
	d.wg.Done()
}
