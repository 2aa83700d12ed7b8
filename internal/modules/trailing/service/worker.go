package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"terminal_bridge/internal/models"
	"terminal_bridge/internal/notify"
	"terminal_bridge/pkg/logger"

	"github.com/opentracing/opentracing-go"
)

const (
	defaultInterval    = 5 * time.Second
	defaultStopTimeout = 10 * time.Second
)

// Probe — куда воркер отчитывается о своём состоянии (health-модуль).
type Probe interface {
	SetWorkerRunning(bool)
	TouchCycle(time.Time)
}

// Worker — цикл супервизии трейлинг-стопов. Одна горутина, фиксированный
// интервал от конца цикла до начала следующего. Ошибки одного джоба
// изолированы: цикл всегда доходит до конца снапшота.
type Worker struct {
	gw       Gateway
	jobs     *Registry
	notifier notify.Notifier
	probe    Probe

	interval    time.Duration
	stopTimeout time.Duration
	maxFailures int // 0 = бесконечный ретрай

	// подряд идущие неудачные проходы по тикету;
	// трогает только горутина цикла, лок не нужен
	failures map[int64]failTrack

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

type WorkerConfig struct {
	Interval    time.Duration
	StopTimeout time.Duration
	MaxFailures int
}

func NewWorker(gw Gateway, jobs *Registry, n notify.Notifier, probe Probe, cfg WorkerConfig) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = defaultStopTimeout
	}
	return &Worker{
		gw:          gw,
		jobs:        jobs,
		notifier:    n,
		probe:       probe,
		interval:    cfg.Interval,
		stopTimeout: cfg.StopTimeout,
		maxFailures: cfg.MaxFailures,
		failures:    make(map[int64]failTrack),
	}
}

// Start запускает цикл. Повторный вызов при работающем цикле — no-op
// с warning'ом.
func (w *Worker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		logger.Warn("trailing worker is already running, skip start")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)
	logger.Info("trailing worker started, interval=%s", w.interval)
}

// Stop сигналит циклу остановиться и ждёт конца текущего прохода,
// но не дольше stopTimeout. По таймауту цикл бросаем: сайд-эффекты
// прохода идемпотентны, убивать его насильно незачем.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		logger.Warn("trailing worker is not running, skip stop")
		return
	}
	w.running = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	select {
	case <-done:
		logger.Info("trailing worker stopped")
	case <-time.After(w.stopTimeout):
		logger.Warn("trailing worker did not stop within %s, abandoning", w.stopTimeout)
	}
}

// Running — работает ли цикл прямо сейчас.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	if w.probe != nil {
		w.probe.SetWorkerRunning(true)
		defer w.probe.SetWorkerRunning(false)
	}

	for {
		if ctx.Err() != nil {
			return
		}
		w.runCycle(ctx)

		// интервал меряется от конца цикла, не по wall-clock сетке
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.interval):
		}
	}
}

func (w *Worker) runCycle(ctx context.Context) {
	span := opentracing.StartSpan("trailing_cycle")
	defer span.Finish()
	cctx := opentracing.ContextWithSpan(ctx, span)

	snapshot := w.jobs.Snapshot()
	span.SetTag("jobs", len(snapshot))

	for _, job := range snapshot {
		if ctx.Err() != nil {
			return
		}
		w.processJob(cctx, job)
	}

	if w.probe != nil {
		w.probe.TouchCycle(time.Now())
	}
}

// processJob — один джоб за цикл. Любая ошибка логируется и оставляет
// джоб на следующий проход; снимаем джоб только при подтверждённом
// исчезновении позиции (до или после попытки модификации).
func (w *Worker) processJob(ctx context.Context, job models.TrailingJob) {
	pos, found, err := w.gw.Position(ctx, job.Ticket)
	if err != nil {
		w.fail(job.Ticket, "get position: %v", err)
		return
	}
	if !found {
		w.removeJob(job.Ticket, "position gone before update")
		return
	}

	w.trail(ctx, job, pos)

	// позиция могла закрыться прямо во время прохода
	// (например, стоп сработал) — перепроверяем в любом случае
	_, found, err = w.gw.Position(ctx, job.Ticket)
	if err != nil {
		logger.Error("trailing %d: recheck position: %v", job.Ticket, err)
		return
	}
	if !found {
		w.removeJob(job.Ticket, "position gone after update")
	}
}

// trail — сам шаг трейлинга для живой позиции: тик, метаданные,
// расчёт, модификация.
func (w *Worker) trail(ctx context.Context, job models.TrailingJob, pos models.Position) {
	tick, err := w.gw.Tick(ctx, pos.Symbol)
	if err != nil {
		w.fail(job.Ticket, "get tick %s: %v", pos.Symbol, err)
		return
	}
	inst, err := w.gw.InstrumentInfo(ctx, pos.Symbol)
	if err != nil {
		w.fail(job.Ticket, "get instrument %s: %v", pos.Symbol, err)
		return
	}

	price := tick.PriceFor(pos.Side)
	dec, err := ComputeNewStop(pos.Side, price, pos.SL, job.Distance*inst.Point, inst.Point, inst.Digits)
	if err != nil {
		// битые данные позиции, а не transient-сбой терминала
		w.fail(job.Ticket, "compute stop: %v", err)
		return
	}

	switch dec.Kind {
	case DecisionNoChange:
		w.pass(job.Ticket)

	case DecisionReject:
		// цена может уйти в нужную сторону — джоб остаётся
		logger.Warn("trailing %d: %s", job.Ticket, dec.Reason)
		w.pass(job.Ticket)

	case DecisionNewStop:
		if err := w.gw.ModifySLTP(ctx, job.Ticket, pos.Symbol, dec.NewStop, pos.TP); err != nil {
			w.fail(job.Ticket, "modify SL: %v", err)
			return
		}
		logger.Info("trailing %d: SL -> %.*f (%s %s)", job.Ticket, inst.Digits, dec.NewStop, pos.Symbol, pos.Side)
		if w.notifier != nil {
			w.notifier.Sendf("🛡 [%s] SL подтянут (%s) -> %.*f, тикет %d",
				pos.Symbol, pos.Side, inst.Digits, dec.NewStop, job.Ticket)
		}
		w.pass(job.Ticket)
	}
}

func (w *Worker) removeJob(ticket int64, why string) {
	if w.jobs.Remove(ticket) {
		logger.Info("trailing %d: %s, job removed", ticket, why)
		if w.notifier != nil {
			w.notifier.Sendf("ℹ️ Трейлинг по тикету %d снят: %s", ticket, why)
		}
	}
	delete(w.failures, ticket)
}

// pass — джоб прошёл цикл без сбоев, счётчик неудач обнуляем.
func (w *Worker) pass(ticket int64) {
	delete(w.failures, ticket)
}

// failTrack — счётчик неудач, привязанный к поколению записи в реестре:
// переустановленный через API джоб стартует с чистым счётчиком.
type failTrack struct {
	n   int
	gen uint64
}

// fail — transient-сбой прохода: логируем, джоб остаётся на ретрай.
// При maxFailures > 0 джоб выселяется после N подряд неудачных проходов.
func (w *Worker) fail(ticket int64, format string, args ...any) {
	logger.Error("trailing "+strconv.FormatInt(ticket, 10)+": "+format+", will retry next cycle", args...)

	if w.maxFailures <= 0 {
		return
	}
	gen, ok := w.jobs.Gen(ticket)
	if !ok {
		// джоб уже сняли, считать нечего
		delete(w.failures, ticket)
		return
	}
	ft := w.failures[ticket]
	if ft.gen != gen {
		ft = failTrack{gen: gen}
	}
	ft.n++
	if ft.n < w.maxFailures {
		w.failures[ticket] = ft
		return
	}
	if w.jobs.Remove(ticket) {
		logger.Warn("trailing %d: evicted after %d consecutive failures", ticket, ft.n)
		if w.notifier != nil {
			w.notifier.Sendf("⚠️ Трейлинг по тикету %d снят после %d неудачных попыток подряд",
				ticket, ft.n)
		}
	}
	delete(w.failures, ticket)
}
