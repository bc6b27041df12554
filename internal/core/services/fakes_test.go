package services

import (
	"context"
	"errors"
	"sync"

	"github.com/nextcloud/ncp-activation/internal/core/domain"
	"github.com/nextcloud/ncp-activation/internal/core/ports"
)

type probeStep struct {
	result domain.ProbeResult
	err    error
}

// scriptedProbe replays steps in order and repeats the last one.
type scriptedProbe struct {
	mu    sync.Mutex
	steps []probeStep
	calls int
}

func (p *scriptedProbe) Probe(ctx context.Context) (domain.ProbeResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	if i >= len(p.steps) {
		i = len(p.steps) - 1
	}
	p.calls++
	return p.steps[i].result, p.steps[i].err
}

func (p *scriptedProbe) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func containers(state string, names ...string) domain.ProbeResult {
	return domain.ProbeResult{
		RuntimeVersion: "25.0.6",
		Containers:     []domain.ContainerSummary{{Names: names, State: state, Image: "nextcloud/aio"}},
	}
}

var errConnRefused = errors.New("dial unix /var/run/docker.sock: connect: connection refused")

type fakeHandle struct{}

func (fakeHandle) Secret(name string) (string, error) { return "secret-" + name, nil }

type fakeCrypto struct {
	deriveErr error
}

func (f *fakeCrypto) Derive(version, password string) (ports.CryptoHandle, error) {
	if f.deriveErr != nil {
		return nil, f.deriveErr
	}
	return fakeHandle{}, nil
}

func (f *fakeCrypto) BuildConfig(version string, h ports.CryptoHandle) (domain.NcpConfig, error) {
	return domain.NcpConfig{Version: version, NcAio: domain.NcAioConfig{Domain: "nextcloud.local"}}, nil
}

func (f *fakeCrypto) Secrets(cfg domain.NcAioConfig, h ports.CryptoHandle) (domain.NcAioSecrets, error) {
	return domain.NcAioSecrets{DatabasePassword: "db"}, nil
}

type fakeStore struct {
	saved []string
	err   error
}

func (f *fakeStore) Save(path string, cfg domain.NcpConfig) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, path)
	return nil
}

type fakeRenderer struct {
	rendered []string
	failOn   string
}

func (f *fakeRenderer) Render(src, dst string, cfg domain.NcAioConfig, secrets domain.NcAioSecrets) error {
	if f.failOn != "" && dst == f.failOn {
		return errors.New("template: defaults.env.tmpl:3: unexpected EOF")
	}
	f.rendered = append(f.rendered, dst)
	return nil
}

type fakeSupervisor struct {
	notified int
	err      error
}

func (f *fakeSupervisor) NotifyReady() error {
	f.notified++
	return f.err
}

type fakeStarter struct {
	started int
}

func (f *fakeStarter) Start() { f.started++ }
