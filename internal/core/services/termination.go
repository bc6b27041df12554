package services

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	ncplog "github.com/nextcloud/ncp-activation/internal/log"
)

// DefaultExitDelay gives the acknowledgement of terminate time to reach the caller.
const DefaultExitDelay = time.Second

// TerminationScheduler exits the process after a delay.
type TerminationScheduler struct {
	delay  time.Duration
	exit   func(code int)
	logger *slog.Logger

	mu      sync.Mutex
	pending map[uuid.UUID]context.CancelFunc
}

// NewTerminationScheduler creates a scheduler. A nil exit func uses os.Exit.
func NewTerminationScheduler(delay time.Duration, exit func(code int), logger *slog.Logger) *TerminationScheduler {
	if exit == nil {
		exit = os.Exit
	}
	return &TerminationScheduler{
		delay:   delay,
		exit:    exit,
		logger:  ncplog.Component(logger, "termination"),
		pending: make(map[uuid.UUID]context.CancelFunc),
	}
}

// Terminate arms a delayed exit and returns immediately. Every call arms its
// own exit; the first one to fire ends the process. The returned token
// identifies the armed exit.
func (t *TerminationScheduler) Terminate() uuid.UUID {
	token := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())

	t.mu.Lock()
	t.pending[token] = cancel
	t.mu.Unlock()

	t.logger.Info("exit scheduled", "delay", t.delay, "token", token)
	go func() {
		timer := time.NewTimer(t.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			t.mu.Lock()
			delete(t.pending, token)
			t.mu.Unlock()
			t.exit(0)
		case <-ctx.Done():
			t.logger.Info("scheduled exit cancelled", "token", token)
		}
	}()
	return token
}

// Cancel disarms a scheduled exit. It reports whether the token was pending.
// No transport exposes it; an armed exit currently always fires.
func (t *TerminationScheduler) Cancel(token uuid.UUID) bool {
	t.mu.Lock()
	cancel, ok := t.pending[token]
	delete(t.pending, token)
	t.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}
