package service

import (
	"sync/atomic"
	"time"
)

// State — атомарные индикаторы для health-эндпоинтов.
// Пишет воркер супервизии, читает HTTP-слой.
type State struct {
	startedAt time.Time

	workerRunning atomic.Bool
	lastCycleUnix atomic.Int64 // unix seconds
}

func NewState() *State {
	return &State{startedAt: time.Now()}
}

func (s *State) SetWorkerRunning(v bool) { s.workerRunning.Store(v) }
func (s *State) WorkerRunning() bool     { return s.workerRunning.Load() }

func (s *State) TouchCycle(t time.Time) { s.lastCycleUnix.Store(t.Unix()) }
func (s *State) LastCycle() time.Time {
	u := s.lastCycleUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
