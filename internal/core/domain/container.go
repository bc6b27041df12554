package domain

import (
	"fmt"
	"strings"
)

// Unknown is substituted for container fields the runtime did not report.
const Unknown = "unknown"

const (
	// ApacheContainerName is the container whose running state marks the AIO stack as ready.
	ApacheContainerName = "/nextcloud-aio-apache"
	// AioContainerPrefix matches every container that belongs to the AIO stack.
	AioContainerPrefix = "/nextcloud-aio"
	// CaddyContainerName is the reverse proxy container shipped next to the stack.
	CaddyContainerName = "ncp-caddy"

	stateRunning = "running"
)

// ContainerSummary represents a container as reported by the runtime (Docker, Podman, etc.)
type ContainerSummary struct {
	ImageID   string   `json:"image_id"`
	Image     string   `json:"image"`
	Status    string   `json:"status"`
	State     string   `json:"state"` // running, exited, etc.
	CreatedAt int64    `json:"created_at"`
	Names     []string `json:"names"`
}

// Display formats the summary the way it is shown to the operator.
func (c ContainerSummary) Display() string {
	return fmt.Sprintf("%s/%s: %s (%ds) - [%s]",
		orUnknown(c.ImageID),
		orUnknown(c.Image),
		orUnknown(c.Status),
		c.CreatedAt,
		strings.Join(c.Names, ", "),
	)
}

// HasName reports whether one of the container names equals name.
func (c ContainerSummary) HasName(name string) bool {
	for _, n := range c.Names {
		if n == name {
			return true
		}
	}
	return false
}

// IsAioContainer reports whether the container is part of the AIO stack and
// should be listed in the published status.
func IsAioContainer(c ContainerSummary) bool {
	for _, n := range c.Names {
		if strings.HasPrefix(n, AioContainerPrefix) || n == CaddyContainerName {
			return true
		}
	}
	return false
}

// IsReady reports whether the apache container is running. It is evaluated
// against the complete container list, not the filtered one.
func IsReady(containers []ContainerSummary) bool {
	for _, c := range containers {
		if c.State == stateRunning && c.HasName(ApacheContainerName) {
			return true
		}
	}
	return false
}

// ProbeResult is what a single query against the container runtime returns.
type ProbeResult struct {
	RuntimeVersion string
	Containers     []ContainerSummary
}

// ContainerStatusResult is the snapshot published after each successful poll.
type ContainerStatusResult struct {
	Containers     []string `json:"containers"`
	Ready          bool     `json:"ready"`
	RuntimeVersion string   `json:"docker_version"`
}

// NewContainerStatusResult filters the probe result down to the AIO containers
// and computes readiness from the unfiltered list.
func NewContainerStatusResult(p ProbeResult) ContainerStatusResult {
	containers := make([]string, 0, len(p.Containers))
	for _, c := range p.Containers {
		if IsAioContainer(c) {
			containers = append(containers, c.Display())
		}
	}
	return ContainerStatusResult{
		Containers:     containers,
		Ready:          IsReady(p.Containers),
		RuntimeVersion: orUnknown(p.RuntimeVersion),
	}
}

func (r ContainerStatusResult) String() string {
	header := "Waiting for containers:\n=> "
	if r.Ready {
		header = "All containers started!\n=> "
	}
	return header + strings.Join(r.Containers, "\n=> ") +
		fmt.Sprintf("\n\n (docker version: %s)", r.RuntimeVersion)
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
