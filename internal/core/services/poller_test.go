package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextcloud/ncp-activation/internal/core/domain"
)

const testInterval = 5 * time.Millisecond

func runPoller(t *testing.T, p *ReadinessPoller) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()
	return done
}

func TestPollerIdleUntilStarted(t *testing.T) {
	probe := &scriptedProbe{steps: []probeStep{{result: containers("running", "/nextcloud-aio-apache")}}}
	p := NewReadinessPoller(NewStatusService(probe, nil), testInterval, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(10 * testInterval)
	assert.Zero(t, probe.Calls())
	_, ok := p.Latest()
	assert.False(t, ok)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestPollerStopsOnceReady(t *testing.T) {
	probe := &scriptedProbe{steps: []probeStep{
		{result: containers("starting", "/nextcloud-aio-apache")},
		{result: containers("starting", "/nextcloud-aio-apache")},
		{result: containers("running", "/nextcloud-aio-apache")},
	}}
	p := NewReadinessPoller(NewStatusService(probe, nil), testInterval, nil)
	updates := p.Subscribe()

	done := runPoller(t, p)
	p.Start()
	p.Start()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not reach ready")
	}

	calls := probe.Calls()
	assert.Equal(t, 3, calls)
	time.Sleep(10 * testInterval)
	assert.Equal(t, calls, probe.Calls(), "no probe after ready")

	latest, ok := p.Latest()
	require.True(t, ok)
	assert.True(t, latest.Ready)

	var got []domain.StatusUpdate
	for u := range updates {
		got = append(got, u)
	}
	require.Len(t, got, 3)
	assert.False(t, got[0].Result.Ready)
	assert.True(t, got[2].Result.Ready)
}

func TestPollerKeepsLastResultOnProbeError(t *testing.T) {
	probe := &scriptedProbe{steps: []probeStep{
		{result: containers("starting", "/nextcloud-aio-apache")},
		{err: errConnRefused},
	}}
	p := NewReadinessPoller(NewStatusService(probe, nil), testInterval, nil)
	updates := p.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	p.Start()

	first := <-updates
	require.NotNil(t, first.Result)

	for i := 0; i < 3; i++ {
		failed := <-updates
		require.Error(t, failed.Err)
		assert.Nil(t, failed.Result)
	}
	latest, ok := p.Latest()
	require.True(t, ok)
	assert.Equal(t, *first.Result, latest, "failed probe must not replace the published result")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPollerRetriesUntilRuntimeRecovers(t *testing.T) {
	probe := &scriptedProbe{steps: []probeStep{
		{err: errConnRefused},
		{err: errConnRefused},
		{result: containers("running", "/nextcloud-aio-apache")},
	}}
	p := NewReadinessPoller(NewStatusService(probe, nil), testInterval, nil)

	done := runPoller(t, p)
	p.Start()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not recover")
	}
	assert.Equal(t, 3, probe.Calls())
}

func TestPollerSubscribeAfterRun(t *testing.T) {
	probe := &scriptedProbe{steps: []probeStep{{result: containers("running", "/nextcloud-aio-apache")}}}
	p := NewReadinessPoller(NewStatusService(probe, nil), testInterval, nil)
	p.Start()
	require.NoError(t, p.Run(context.Background()))

	_, open := <-p.Subscribe()
	assert.False(t, open)
}
