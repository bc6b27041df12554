package domain

// ActivationPhase is the UI-facing progress of the activation.
type ActivationPhase string

const (
	PhaseNotActivated       ActivationPhase = "not_activated"
	PhaseActivating         ActivationPhase = "activating"
	PhaseWaitingForServices ActivationPhase = "waiting_for_services"
	PhaseReady              ActivationPhase = "ready"
	PhaseFailed             ActivationPhase = "failed"
)

// StatusUpdate is sent by the readiness poller after every poll cycle.
// Exactly one of Result and Err is set.
type StatusUpdate struct {
	Result *ContainerStatusResult
	Err    error
}
