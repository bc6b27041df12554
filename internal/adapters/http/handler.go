package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nextcloud/ncp-activation/internal/core/domain"
	"github.com/nextcloud/ncp-activation/internal/core/services"
)

// Activator runs the activation sequence.
type Activator interface {
	Activate(ctx context.Context, password string) error
}

// Terminator schedules process exit.
type Terminator interface {
	Terminate() uuid.UUID
}

// ActivationHandler exposes the activation operations over HTTP.
type ActivationHandler struct {
	activator    Activator
	terminator   Terminator
	status       services.StatusChecker
	state        *services.AppState
	nextcloudURL string
}

// NewActivationHandler creates the handler. state is shared with the activation coordinator.
func NewActivationHandler(activator Activator, terminator Terminator, status services.StatusChecker, state *services.AppState, nextcloudURL string) *ActivationHandler {
	return &ActivationHandler{
		activator:    activator,
		terminator:   terminator,
		status:       status,
		state:        state,
		nextcloudURL: nextcloudURL,
	}
}

// Routes mounts the handlers on router.
func (h *ActivationHandler) Routes(router fiber.Router) {
	v1 := router.Group("/api/v1")
	v1.Post("/activate", h.Activate)
	v1.Post("/terminate", h.Terminate)
	v1.Get("/status", h.CheckAioStarted)
	v1.Get("/state", h.State)
	v1.Post("/caddy/nextcloud", h.CaddyEnableNextcloud)

	router.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

type ActivateRequest struct {
	Password string `json:"password"`
}

func (h *ActivationHandler) Activate(c *fiber.Ctx) error {
	var req ActivateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.activator.Activate(c.Context(), req.Password); err != nil {
		return c.Status(activationStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func activationStatus(err error) int {
	var ce *domain.CryptoError
	switch {
	case errors.Is(err, domain.ErrAlreadyActivated):
		return fiber.StatusConflict
	case errors.As(err, &ce):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// Terminate acknowledges immediately; the process exits after a short delay.
func (h *ActivationHandler) Terminate(c *fiber.Ctx) error {
	h.terminator.Terminate()
	return c.SendStatus(fiber.StatusAccepted)
}

type statusResponse struct {
	domain.ContainerStatusResult
	Summary string `json:"summary"`
}

func (h *ActivationHandler) CheckAioStarted(c *fiber.Ctx) error {
	result, err := h.status.CheckAioStarted(c.Context())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(statusResponse{ContainerStatusResult: result, Summary: result.String()})
}

type stateResponse struct {
	services.AppStateView
	NextcloudURL string `json:"nextcloud_url,omitempty"`
}

func (h *ActivationHandler) State(c *fiber.Ctx) error {
	view := h.state.Snapshot()
	resp := stateResponse{AppStateView: view}
	if view.Phase == domain.PhaseReady {
		resp.NextcloudURL = h.nextcloudURL
	}
	return c.JSON(resp)
}

// CaddyEnableNextcloud is reserved for switching the reverse proxy over to
// Nextcloud. It does nothing yet.
func (h *ActivationHandler) CaddyEnableNextcloud(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
