package service

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Enable(t *testing.T) {
	t.Run("rejects non-positive distance", func(t *testing.T) {
		s := NewService(eurusdGateway(), NewRegistry())
		assert.ErrorIs(t, s.Enable(context.Background(), 1, 0), ErrBadDistance)
		assert.ErrorIs(t, s.Enable(context.Background(), 1, -10), ErrBadDistance)
	})

	t.Run("rejects unknown ticket", func(t *testing.T) {
		jobs := NewRegistry()
		s := NewService(eurusdGateway(), jobs)

		err := s.Enable(context.Background(), 999, 50)
		assert.ErrorIs(t, err, ErrPositionNotFound)
		assert.Zero(t, jobs.Len(), "no job for a dead ticket")
	})

	t.Run("propagates gateway failure", func(t *testing.T) {
		g := eurusdGateway()
		g.posErr = errors.New("terminal is down")
		s := NewService(g, NewRegistry())

		err := s.Enable(context.Background(), 1, 50)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrPositionNotFound)
	})

	t.Run("creates and updates job", func(t *testing.T) {
		jobs := NewRegistry()
		s := NewService(eurusdGateway(), jobs)

		require.NoError(t, s.Enable(context.Background(), 1, 50))
		require.NoError(t, s.Enable(context.Background(), 1, 80))

		list := s.List()
		require.Len(t, list, 1)
		assert.Equal(t, 80.0, list[0].Distance)
	})
}

func TestService_Disable(t *testing.T) {
	jobs := NewRegistry()
	s := NewService(eurusdGateway(), jobs)

	require.NoError(t, s.Enable(context.Background(), 1, 50))
	require.NoError(t, s.Disable(1))
	assert.ErrorIs(t, s.Disable(1), ErrJobNotFound)
}
