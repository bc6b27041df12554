package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextcloud/ncp-activation/internal/core/domain"
)

func TestCheckAioStarted(t *testing.T) {
	ctx := context.Background()

	t.Run("apache starting", func(t *testing.T) {
		svc := NewStatusService(&scriptedProbe{steps: []probeStep{{result: containers("starting", "/nextcloud-aio-apache")}}}, nil)

		result, err := svc.CheckAioStarted(ctx)
		require.NoError(t, err)
		assert.False(t, result.Ready)
		assert.Len(t, result.Containers, 1)
		assert.Equal(t, "25.0.6", result.RuntimeVersion)
	})

	t.Run("apache running", func(t *testing.T) {
		svc := NewStatusService(&scriptedProbe{steps: []probeStep{{result: containers("running", "/nextcloud-aio-apache")}}}, nil)

		result, err := svc.CheckAioStarted(ctx)
		require.NoError(t, err)
		assert.True(t, result.Ready)
	})

	t.Run("unrelated container", func(t *testing.T) {
		svc := NewStatusService(&scriptedProbe{steps: []probeStep{{result: containers("running", "/unrelated")}}}, nil)

		result, err := svc.CheckAioStarted(ctx)
		require.NoError(t, err)
		assert.False(t, result.Ready)
		assert.Empty(t, result.Containers)
	})

	t.Run("runtime unreachable then recovers", func(t *testing.T) {
		probe := &scriptedProbe{steps: []probeStep{
			{err: errConnRefused},
			{result: containers("running", "/nextcloud-aio-apache")},
		}}
		svc := NewStatusService(probe, nil)

		_, err := svc.CheckAioStarted(ctx)
		var pe *domain.ProbeError
		require.ErrorAs(t, err, &pe)
		assert.True(t, errors.Is(err, errConnRefused))

		result, err := svc.CheckAioStarted(ctx)
		require.NoError(t, err)
		assert.True(t, result.Ready)
	})
}
