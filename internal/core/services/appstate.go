package services

import (
	"context"
	"sync"

	"github.com/nextcloud/ncp-activation/internal/core/domain"
)

const (
	msgActivating = "Activating NCP..."
	msgWaiting    = "NCP activated successfully! - Waiting for services to start"
	msgReady      = "Nextcloud has started."
)

// AppStateView is an immutable copy of the application state.
type AppStateView struct {
	Phase      domain.ActivationPhase        `json:"phase"`
	Message    string                        `json:"message"`
	LastStatus *domain.ContainerStatusResult `json:"last_status,omitempty"`
	LastError  string                        `json:"last_error,omitempty"`
}

// AppState is the application state owned by the process. It is only
// changed through its transition methods.
type AppState struct {
	mu         sync.RWMutex
	phase      domain.ActivationPhase
	message    string
	lastStatus *domain.ContainerStatusResult
	lastError  string
}

// NewAppState returns a state in PhaseNotActivated.
func NewAppState() *AppState {
	return &AppState{phase: domain.PhaseNotActivated}
}

// BeginActivation moves to PhaseActivating. Activation may be retried after a
// failure; every other phase rejects it with domain.ErrAlreadyActivated.
func (s *AppState) BeginActivation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case domain.PhaseNotActivated, domain.PhaseFailed:
		s.phase = domain.PhaseActivating
		s.message = msgActivating
		s.lastError = ""
		return nil
	default:
		return domain.ErrAlreadyActivated
	}
}

// ActivationSucceeded moves from PhaseActivating to PhaseWaitingForServices.
func (s *AppState) ActivationSucceeded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseActivating {
		return
	}
	s.phase = domain.PhaseWaitingForServices
	s.message = msgWaiting
}

// ActivationFailed moves from PhaseActivating to PhaseFailed.
func (s *AppState) ActivationFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseActivating {
		return
	}
	s.phase = domain.PhaseFailed
	s.message = err.Error()
	s.lastError = err.Error()
}

// StatusPublished records a new container status and moves to PhaseReady
// once the stack is ready.
func (s *AppState) StatusPublished(r domain.ContainerStatusResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastStatus = &r
	s.lastError = ""
	if r.Ready && s.phase == domain.PhaseWaitingForServices {
		s.phase = domain.PhaseReady
		s.message = msgReady
	}
}

// ProbeFailed records a transient probe error. The last status is kept.
func (s *AppState) ProbeFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err.Error()
}

// PollingStopped is called when polling ended. If the stack never became
// ready the state moves to PhaseFailed.
func (s *AppState) PollingStopped(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseWaitingForServices {
		return
	}
	s.phase = domain.PhaseFailed
	if err != nil {
		s.message = "stopped waiting for services: " + err.Error()
	} else {
		s.message = "stopped waiting for services"
	}
}

// Snapshot returns a copy of the current state.
func (s *AppState) Snapshot() AppStateView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := AppStateView{
		Phase:     s.phase,
		Message:   s.message,
		LastError: s.lastError,
	}
	if s.lastStatus != nil {
		st := *s.lastStatus
		v.LastStatus = &st
	}
	return v
}

// Follow applies poller updates until the channel is closed or ctx is done.
func (s *AppState) Follow(ctx context.Context, updates <-chan domain.StatusUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			switch {
			case u.Err != nil:
				s.ProbeFailed(u.Err)
			case u.Result != nil:
				s.StatusPublished(*u.Result)
			}
		}
	}
}
