package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nextcloud/ncp-activation/internal/core/domain"
	"github.com/nextcloud/ncp-activation/internal/core/ports"
	ncplog "github.com/nextcloud/ncp-activation/internal/log"
	"github.com/nextcloud/ncp-activation/internal/metrics"
)

// ProtocolVersion is the version of the key derivation and config layout.
const ProtocolVersion = "1"

// Paths of the rendered deployment, relative to the source and target directories.
const (
	ConfigFile = "ncp.json"
	AioDir     = "nextcloud-aio"

	EnvTemplate     = "defaults.env.tmpl"
	EnvFile         = ".env"
	ComposeTemplate = "compose.yaml.tmpl"
	ComposeFile     = "compose.yaml"
)

// Starter is signalled once activation has completed.
type Starter interface {
	Start()
}

// Dirs are the configured template source and render target directories.
type Dirs struct {
	Source string
	Target string
}

// ActivationCoordinator turns the master password into a rendered deployment.
type ActivationCoordinator struct {
	dirs       Dirs
	crypto     ports.CryptoService
	store      ports.ConfigStore
	renderer   ports.TemplateRenderer
	supervisor ports.Supervisor
	poller     Starter
	state      *AppState
	logger     *slog.Logger
}

// ActivationDeps groups the collaborators of the coordinator.
type ActivationDeps struct {
	Crypto     ports.CryptoService
	Store      ports.ConfigStore
	Renderer   ports.TemplateRenderer
	Supervisor ports.Supervisor
	Poller     Starter
	State      *AppState
}

// NewActivationCoordinator creates a coordinator. A nil State gets a fresh one.
func NewActivationCoordinator(dirs Dirs, deps ActivationDeps, logger *slog.Logger) *ActivationCoordinator {
	state := deps.State
	if state == nil {
		state = NewAppState()
	}
	return &ActivationCoordinator{
		dirs:       dirs,
		crypto:     deps.Crypto,
		store:      deps.Store,
		renderer:   deps.Renderer,
		supervisor: deps.Supervisor,
		poller:     deps.Poller,
		state:      state,
		logger:     ncplog.Component(logger, "activation"),
	}
}

// Activate derives the secrets, renders the deployment, notifies the
// supervisor and starts the readiness poller.
//
// Steps run in order and the first failure aborts the rest. Files written
// before the failure are left in place. Once an activation succeeded, or
// while one is running, further calls return domain.ErrAlreadyActivated.
func (a *ActivationCoordinator) Activate(ctx context.Context, password string) error {
	if err := a.state.BeginActivation(); err != nil {
		metrics.Activations.WithLabelValues("rejected").Inc()
		return err
	}

	if err := a.activate(ctx, password); err != nil {
		metrics.Activations.WithLabelValues("error").Inc()
		a.logger.Error("activation failed", ncplog.ErrorKey, err)
		a.state.ActivationFailed(err)
		return err
	}

	metrics.Activations.WithLabelValues("success").Inc()
	a.state.ActivationSucceeded()
	a.logger.Info("NCP activated, waiting for services to start")
	if a.poller != nil {
		a.poller.Start()
	}
	return nil
}

func (a *ActivationCoordinator) activate(ctx context.Context, password string) error {
	if err := a.checkDirs(); err != nil {
		return &domain.ActivationError{Step: "configuration", Err: err}
	}

	handle, err := a.crypto.Derive(ProtocolVersion, password)
	if err != nil {
		return &domain.ActivationError{Step: "key derivation", Err: asCryptoError(err)}
	}
	cfg, err := a.crypto.BuildConfig(ProtocolVersion, handle)
	if err != nil {
		return &domain.ActivationError{Step: "config", Err: asCryptoError(err)}
	}

	configPath := filepath.Join(a.dirs.Target, ConfigFile)
	if err := a.store.Save(configPath, cfg); err != nil {
		return &domain.ActivationError{Step: "save config", Err: asRenderError(configPath, err)}
	}
	a.logger.Debug("saved config", ncplog.PathKey, configPath)

	secrets, err := a.crypto.Secrets(cfg.NcAio, handle)
	if err != nil {
		return &domain.ActivationError{Step: "secrets", Err: asCryptoError(err)}
	}

	if err := ctx.Err(); err != nil {
		return &domain.ActivationError{Step: "render", Err: err}
	}

	src := filepath.Join(a.dirs.Source, AioDir)
	dst := filepath.Join(a.dirs.Target, AioDir)
	for _, t := range []struct{ tmpl, out string }{
		{EnvTemplate, EnvFile},
		{ComposeTemplate, ComposeFile},
	} {
		out := filepath.Join(dst, t.out)
		if err := a.renderer.Render(filepath.Join(src, t.tmpl), out, cfg.NcAio, secrets); err != nil {
			return &domain.ActivationError{Step: "render", Err: asRenderError(out, err)}
		}
		a.logger.Debug("rendered template", "template", t.tmpl, ncplog.PathKey, out)
	}

	if a.supervisor != nil {
		if err := a.supervisor.NotifyReady(); err != nil {
			a.logger.Warn("failed to notify supervisor", ncplog.ErrorKey, err)
		}
	}
	return nil
}

func (a *ActivationCoordinator) checkDirs() error {
	if a.dirs.Source == "" {
		return &domain.ConfigurationError{Key: "NCP_CONFIG_SOURCE", Err: errors.New("not set")}
	}
	if a.dirs.Target == "" {
		return &domain.ConfigurationError{Key: "NCP_CONFIG_TARGET", Err: errors.New("not set")}
	}
	info, err := os.Stat(a.dirs.Source)
	if err != nil {
		return &domain.ConfigurationError{Key: "NCP_CONFIG_SOURCE", Err: err}
	}
	if !info.IsDir() {
		return &domain.ConfigurationError{Key: "NCP_CONFIG_SOURCE", Err: fmt.Errorf("%s is not a directory", a.dirs.Source)}
	}
	return nil
}

func asCryptoError(err error) error {
	var ce *domain.CryptoError
	if errors.As(err, &ce) {
		return err
	}
	return &domain.CryptoError{Err: err}
}

func asRenderError(path string, err error) error {
	var re *domain.RenderError
	if errors.As(err, &re) {
		return err
	}
	return &domain.RenderError{Path: path, Err: err}
}
