package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nextcloud/ncp-activation/internal/core/domain"
	ncplog "github.com/nextcloud/ncp-activation/internal/log"
	"github.com/nextcloud/ncp-activation/internal/metrics"
)

// DefaultPollInterval is the pause before every probe.
const DefaultPollInterval = time.Second

const subscriberBuffer = 16

// StatusChecker performs one readiness check.
type StatusChecker interface {
	CheckAioStarted(ctx context.Context) (domain.ContainerStatusResult, error)
}

// ReadinessPoller repeatedly checks the container runtime after it has been
// started, until the AIO stack reports ready.
//
// The poller is idle until Start is called. Probe failures are published to
// subscribers but never replace the last successful result, and polling
// continues at the same interval without a retry limit.
type ReadinessPoller struct {
	checker  StatusChecker
	interval time.Duration
	logger   *slog.Logger

	start     chan struct{}
	startOnce sync.Once

	latest atomic.Pointer[domain.ContainerStatusResult]

	mu          sync.Mutex
	subscribers []chan domain.StatusUpdate
	closed      bool
}

// NewReadinessPoller creates an idle poller. A non-positive interval falls back to DefaultPollInterval.
func NewReadinessPoller(checker StatusChecker, interval time.Duration, logger *slog.Logger) *ReadinessPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &ReadinessPoller{
		checker:  checker,
		interval: interval,
		logger:   ncplog.Component(logger, "poller"),
		start:    make(chan struct{}),
	}
}

// Start signals the poller to begin. Only the first call has an effect.
func (p *ReadinessPoller) Start() {
	p.startOnce.Do(func() { close(p.start) })
}

// Latest returns the most recently published result, if any.
func (p *ReadinessPoller) Latest() (domain.ContainerStatusResult, bool) {
	r := p.latest.Load()
	if r == nil {
		return domain.ContainerStatusResult{}, false
	}
	return *r, true
}

// Subscribe returns a channel receiving one update per poll cycle. The channel
// is closed when Run returns. Updates are dropped for a subscriber whose buffer is full.
func (p *ReadinessPoller) Subscribe() <-chan domain.StatusUpdate {
	ch := make(chan domain.StatusUpdate, subscriberBuffer)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		close(ch)
		return ch
	}
	p.subscribers = append(p.subscribers, ch)
	return ch
}

// Run blocks until Start is called, then polls until the stack is ready
// (returns nil) or ctx is cancelled (returns ctx.Err()).
func (p *ReadinessPoller) Run(ctx context.Context) error {
	defer p.closeSubscribers()

	select {
	case <-p.start:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.logger.Info("waiting for AIO containers", "interval", p.interval)

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}

		result, err := p.checker.CheckAioStarted(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("container status check failed", ncplog.ErrorKey, err)
			p.publish(domain.StatusUpdate{Err: err})
			timer.Reset(p.interval)
			continue
		}

		p.latest.Store(&result)
		p.publish(domain.StatusUpdate{Result: &result})
		p.logger.Debug("container status", "containers", len(result.Containers), "ready", result.Ready)

		if result.Ready {
			metrics.StackReady.Set(1)
			p.logger.Info("AIO stack is ready", "runtime_version", result.RuntimeVersion)
			return nil
		}
		timer.Reset(p.interval)
	}
}

func (p *ReadinessPoller) publish(u domain.StatusUpdate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subscribers {
		select {
		case ch <- u:
		default:
			p.logger.Debug("subscriber buffer full, dropping status update")
		}
	}
}

func (p *ReadinessPoller) closeSubscribers() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subscribers {
		close(ch)
	}
	p.subscribers = nil
	p.closed = true
}
