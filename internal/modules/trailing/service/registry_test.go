package service

import (
	"sync"
	"testing"

	"terminal_bridge/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SetAndSnapshot(t *testing.T) {
	r := NewRegistry()

	prev, updated := r.Set(101, 50)
	assert.False(t, updated)
	assert.Zero(t, prev)

	// повторный Set по тикету — апдейт, не вторая запись
	prev, updated = r.Set(101, 80)
	assert.True(t, updated)
	assert.Equal(t, 50.0, prev)

	r.Set(7, 30)

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, []models.TrailingJob{
		{Ticket: 7, Distance: 30},
		{Ticket: 101, Distance: 80},
	}, snap)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	r.Set(42, 25)

	assert.True(t, r.Remove(42))
	assert.False(t, r.Remove(42), "second remove must report missing job")
	assert.Zero(t, r.Len())
}

func TestRegistry_GenChangesOnEverySet(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Gen(1)
	assert.False(t, ok)

	r.Set(1, 50)
	g1, ok := r.Gen(1)
	require.True(t, ok)

	// апдейт дистанции — новое поколение
	r.Set(1, 80)
	g2, _ := r.Gen(1)
	assert.NotEqual(t, g1, g2)

	// снять и поставить заново — тоже новое поколение
	r.Remove(1)
	r.Set(1, 80)
	g3, _ := r.Gen(1)
	assert.NotEqual(t, g2, g3)
}

func TestRegistry_SnapshotIsolation(t *testing.T) {
	r := NewRegistry()
	r.Set(1, 10)

	snap := r.Snapshot()
	r.Set(2, 20)
	r.Remove(1)

	// снапшот не видит изменений после взятия
	require.Len(t, snap, 1)
	assert.Equal(t, int64(1), snap[0].Ticket)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			for j := int64(0); j < 100; j++ {
				r.Set(n*100+j, float64(j))
				_ = r.Snapshot()
				r.Remove(n*100 + j)
			}
		}(int64(i))
	}
	wg.Wait()

	assert.Zero(t, r.Len())
}
