package service

import (
	"encoding/json"
	"net/http"
)

// JobCounter — сколько джобов сейчас в реестре.
type JobCounter interface {
	Len() int
}

type Handler struct {
	state *State
	jobs  JobCounter
}

func NewHandler(state *State, jobs JobCounter) *Handler {
	return &Handler{state: state, jobs: jobs}
}

// Livez: процесс жив.
func (h *Handler) Livez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readyz: сервис готов, когда цикл супервизии работает.
func (h *Handler) Readyz(w http.ResponseWriter, _ *http.Request) {
	if !h.state.WorkerRunning() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Healthz: полезный JSON для отладки.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"workerRunning": h.state.WorkerRunning(),
		"activeJobs":    h.jobs.Len(),
		"uptimeSec":     int64(h.state.Uptime().Seconds()),
		"lastCycleUnix": func() int64 {
			t := h.state.LastCycle()
			if t.IsZero() {
				return 0
			}
			return t.Unix()
		}(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
