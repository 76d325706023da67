package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apifolio/folio/internal/httpclient"
)

const (
	DefaultInterval = 60 * time.Second
	Path            = "/health"
)

// Options configure a Poller.
type Options struct {
	Interval time.Duration
	// Timeout bounds each request phase; zero uses the client default.
	Timeout time.Duration
	// OnUpdate is called with every published snapshot. It is never called
	// once Stop has returned.
	OnUpdate func(Snapshot)
	Now      func() time.Time
	Logger   *slog.Logger
}

// Poller probes GET <baseURL>/health on a fixed schedule and keeps the latest
// Snapshot.
type Poller struct {
	client  *httpclient.Client
	baseURL string
	opts    Options

	// emitMu serializes publishing against Stop.
	emitMu sync.Mutex

	mu      sync.RWMutex
	snap    Snapshot
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}

	inFlight atomic.Bool
	checks   sync.WaitGroup
}

// NewPoller creates a poller for baseURL. The client's own base URL, if any,
// is prefixed to baseURL.
func NewPoller(client *httpclient.Client, baseURL string, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Poller{
		client:  client,
		baseURL: baseURL,
		opts:    opts,
		snap:    Initial(opts.Now()),
	}
}

// Snapshot returns the latest snapshot.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

// Start fires one check immediately and then one per interval until ctx is
// cancelled or Stop is called. It returns immediately. Starting twice is a
// no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil || p.stopped {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(p.opts.Interval)
		defer ticker.Stop()

		for {
			if ctx.Err() != nil {
				p.markStopped()
				return
			}
			p.spawn(ctx)
			select {
			case <-ctx.Done():
				p.markStopped()
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop cancels the schedule. A check still in flight completes but its
// result is discarded.
func (p *Poller) Stop() {
	p.markStopped()

	p.mu.RLock()
	cancel, done := p.cancel, p.done
	p.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Refetch runs a check now and waits for it. It reports false when the check
// was skipped because another one was in flight or the poller is stopped.
func (p *Poller) Refetch(ctx context.Context) bool {
	if p.isStopped() {
		return false
	}
	return p.check(ctx)
}

// Wait blocks until every spawned check has returned.
func (p *Poller) Wait() {
	p.checks.Wait()
}

func (p *Poller) spawn(ctx context.Context) {
	p.checks.Add(1)
	go func() {
		defer p.checks.Done()
		p.check(ctx)
	}()
}

// check performs a single attempt. Only one check runs at a time; a tick that
// lands while another check is running is skipped.
func (p *Poller) check(ctx context.Context) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.opts.Logger.Debug("health check skipped, previous still in flight", "url", p.target())
		return false
	}
	defer p.inFlight.Store(false)

	start := time.Now()
	_, err := httpclient.Do[json.RawMessage](ctx, p.client, p.baseURL+Path, httpclient.Request{
		Method:  httpclient.MethodGet,
		Timeout: p.opts.Timeout,
	})
	elapsed := time.Since(start)

	// Liveness only depends on the status code.
	if httpclient.Kind(err) == httpclient.KindDecode {
		err = nil
	}

	if err != nil {
		p.opts.Logger.Warn("health check failed", "url", p.target(), "kind", httpclient.Kind(err).String(), "err", err)
		return p.publish(func(prev Snapshot) Snapshot { return Failed(prev, p.opts.Now()) })
	}
	return p.publish(func(prev Snapshot) Snapshot { return Succeeded(prev, elapsed, p.opts.Now()) })
}

func (p *Poller) publish(next func(Snapshot) Snapshot) bool {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return false
	}
	p.snap = next(p.snap)
	snap := p.snap
	p.mu.Unlock()

	if p.opts.OnUpdate != nil {
		p.opts.OnUpdate(snap)
	}
	return true
}

func (p *Poller) markStopped() {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
}

func (p *Poller) isStopped() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stopped
}

func (p *Poller) target() string {
	if p.client == nil {
		return p.baseURL + Path
	}
	return p.client.BaseURL() + p.baseURL + Path
}
