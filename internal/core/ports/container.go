package ports

import (
	"context"

	"github.com/nextcloud/ncp-activation/internal/core/domain"
)

// ContainerStatusProbe queries the container runtime.
// This interface allows us to switch between Docker and Podman
// without changing the readiness logic.
type ContainerStatusProbe interface {
	// Probe returns the runtime version and every container, running or stopped.
	// Fields the runtime leaves out are substituted with defaults rather than failing.
	Probe(ctx context.Context) (domain.ProbeResult, error)
}
