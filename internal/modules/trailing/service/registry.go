package service

import (
	"sort"
	"sync"

	"terminal_bridge/internal/models"
)

type jobEntry struct {
	distance float64
	gen      uint64
}

// Registry — реестр активных джобов трейлинг-стопа.
// Общий ресурс HTTP-слоя (писатели) и цикла супервизии (читатель+писатель),
// все операции атомарны под одним мьютексом.
type Registry struct {
	mu      sync.RWMutex
	lastGen uint64
	jobs    map[int64]jobEntry
}

func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[int64]jobEntry),
	}
}

// Set добавляет джоб или обновляет дистанцию существующего.
// На тикет всегда одна запись. Каждый Set начинает новое поколение
// записи: снятый и заново включённый джоб — это новый джоб, а не
// продолжение старого.
func (r *Registry) Set(ticket int64, distance float64) (prev float64, updated bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.jobs[ticket]
	r.lastGen++
	r.jobs[ticket] = jobEntry{distance: distance, gen: r.lastGen}
	return e.distance, ok
}

func (r *Registry) Remove(ticket int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[ticket]; !ok {
		return false
	}
	delete(r.jobs, ticket)
	return true
}

// Gen — поколение записи по тикету; меняется при каждом Set.
func (r *Registry) Gen(ticket int64) (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.jobs[ticket]
	return e.gen, ok
}

// Snapshot — point-in-time копия, по ней можно итерироваться не держа
// лок на время походов в терминал. Отсортирована по тикету.
func (r *Registry) Snapshot() []models.TrailingJob {
	r.mu.RLock()
	out := make([]models.TrailingJob, 0, len(r.jobs))
	for ticket, e := range r.jobs {
		out = append(out, models.TrailingJob{Ticket: ticket, Distance: e.distance})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Ticket < out[j].Ticket })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
