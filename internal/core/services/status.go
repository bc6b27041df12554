package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/nextcloud/ncp-activation/internal/core/domain"
	"github.com/nextcloud/ncp-activation/internal/core/ports"
	ncplog "github.com/nextcloud/ncp-activation/internal/log"
	"github.com/nextcloud/ncp-activation/internal/metrics"
)

// StatusService answers checkAioStarted by probing the container runtime once.
type StatusService struct {
	probe  ports.ContainerStatusProbe
	logger *slog.Logger
}

// NewStatusService creates a status service backed by the given probe.
func NewStatusService(probe ports.ContainerStatusProbe, logger *slog.Logger) *StatusService {
	return &StatusService{probe: probe, logger: ncplog.Component(logger, "status")}
}

// CheckAioStarted probes the runtime and reports which AIO containers exist
// and whether the stack is ready. Failures are returned as *domain.ProbeError.
func (s *StatusService) CheckAioStarted(ctx context.Context) (domain.ContainerStatusResult, error) {
	start := time.Now()
	res, err := s.probe.Probe(ctx)
	metrics.RecordProbe(time.Since(start).Seconds(), err)
	if err != nil {
		return domain.ContainerStatusResult{}, &domain.ProbeError{Err: err}
	}

	for _, c := range res.Containers {
		if !domain.IsAioContainer(c) {
			s.logger.Debug("ignoring container", "names", c.Names)
		}
	}
	return domain.NewContainerStatusResult(res), nil
}
