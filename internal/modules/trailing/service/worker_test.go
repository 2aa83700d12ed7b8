package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"terminal_bridge/internal/models"
	"terminal_bridge/pkg/logger"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type modifyCall struct {
	Ticket int64
	Symbol string
	SL     float64
	TP     float64
}

// fakeGateway — терминал в памяти для тестов воркера.
type fakeGateway struct {
	mu          sync.Mutex
	positions   map[int64]models.Position
	ticks       map[string]models.Tick
	instruments map[string]models.Instrument

	posErr    error
	modifyErr error

	modifies []modifyCall

	// позиция исчезает сразу после успешной модификации
	// (стоп сработал в тот же момент)
	goneAfterModify bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		positions:   make(map[int64]models.Position),
		ticks:       make(map[string]models.Tick),
		instruments: make(map[string]models.Instrument),
	}
}

func (g *fakeGateway) Position(_ context.Context, ticket int64) (models.Position, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.posErr != nil {
		return models.Position{}, false, g.posErr
	}
	p, ok := g.positions[ticket]
	return p, ok, nil
}

func (g *fakeGateway) Tick(_ context.Context, symbol string) (models.Tick, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	tk, ok := g.ticks[symbol]
	if !ok {
		return models.Tick{}, errors.Errorf("no tick for %s", symbol)
	}
	return tk, nil
}

func (g *fakeGateway) InstrumentInfo(_ context.Context, symbol string) (models.Instrument, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	inst, ok := g.instruments[symbol]
	if !ok {
		return models.Instrument{}, errors.Errorf("no instrument for %s", symbol)
	}
	return inst, nil
}

func (g *fakeGateway) ModifySLTP(_ context.Context, ticket int64, symbol string, sl, tp float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.modifyErr != nil {
		return g.modifyErr
	}
	g.modifies = append(g.modifies, modifyCall{Ticket: ticket, Symbol: symbol, SL: sl, TP: tp})
	if p, ok := g.positions[ticket]; ok {
		p.SL, p.TP = sl, tp
		g.positions[ticket] = p
		if g.goneAfterModify {
			delete(g.positions, ticket)
		}
	}
	return nil
}

func (g *fakeGateway) modifyCalls() []modifyCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]modifyCall, len(g.modifies))
	copy(out, g.modifies)
	return out
}

type captureNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureNotifier) Send(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *captureNotifier) Sendf(format string, args ...any) { c.Send(fmt.Sprintf(format, args...)) }

func (c *captureNotifier) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.msgs))
	copy(out, c.msgs)
	return out
}

type fakeProbe struct {
	mu      sync.Mutex
	running bool
	cycles  int
}

func (p *fakeProbe) SetWorkerRunning(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = v
}

func (p *fakeProbe) TouchCycle(time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cycles++
}

func (p *fakeProbe) isRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func eurusdGateway() *fakeGateway {
	g := newFakeGateway()
	g.positions[1] = models.Position{
		Ticket: 1, Symbol: "EURUSD", Side: models.SideLong,
		Volume: 0.1, OpenPrice: 1.1900, SL: 0, TP: 1.2500,
	}
	g.ticks["EURUSD"] = models.Tick{Symbol: "EURUSD", Bid: 1.1999, Ask: 1.2000}
	g.instruments["EURUSD"] = models.Instrument{Symbol: "EURUSD", Point: 0.0001, Digits: 5}
	return g
}

func TestWorker_TightensStop(t *testing.T) {
	g := eurusdGateway()
	jobs := NewRegistry()
	jobs.Set(1, 50) // 50 пунктов = 0.0050

	n := &captureNotifier{}
	w := NewWorker(g, jobs, n, nil, WorkerConfig{})

	w.runCycle(context.Background())

	calls := g.modifyCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, int64(1), calls[0].Ticket)
	assert.Equal(t, "EURUSD", calls[0].Symbol)
	// long считается от ask
	assert.InDelta(t, 1.1950, calls[0].SL, 1e-9)
	// тейк не трогаем
	assert.InDelta(t, 1.2500, calls[0].TP, 1e-9)

	assert.Equal(t, 1, jobs.Len(), "job must survive a successful cycle")
	assert.NotEmpty(t, n.messages())
}

func TestWorker_NoChangeWhenStopAlreadyTight(t *testing.T) {
	g := eurusdGateway()
	p := g.positions[1]
	p.SL = 1.1950
	g.positions[1] = p

	jobs := NewRegistry()
	jobs.Set(1, 50)
	w := NewWorker(g, jobs, nil, nil, WorkerConfig{})

	w.runCycle(context.Background())

	assert.Empty(t, g.modifyCalls())
	assert.Equal(t, 1, jobs.Len())
}

func TestWorker_RejectedStopKeepsJob(t *testing.T) {
	g := eurusdGateway()
	p := g.positions[1]
	p.SL = 1.2100 // стоп выше рынка после гэпа
	g.positions[1] = p

	jobs := NewRegistry()
	jobs.Set(1, 50)
	w := NewWorker(g, jobs, nil, nil, WorkerConfig{})

	w.runCycle(context.Background())

	assert.Empty(t, g.modifyCalls())
	assert.Equal(t, 1, jobs.Len(), "reject is not a removal reason")
}

func TestWorker_RemovesJobWhenPositionGoneBeforeUpdate(t *testing.T) {
	g := eurusdGateway()
	delete(g.positions, 1)

	jobs := NewRegistry()
	jobs.Set(1, 50)
	n := &captureNotifier{}
	w := NewWorker(g, jobs, n, nil, WorkerConfig{})

	w.runCycle(context.Background())

	assert.Zero(t, jobs.Len())
	assert.Empty(t, g.modifyCalls())
	assert.NotEmpty(t, n.messages())
}

func TestWorker_RemovesJobWhenPositionGoneAfterUpdate(t *testing.T) {
	g := eurusdGateway()
	g.goneAfterModify = true

	jobs := NewRegistry()
	jobs.Set(1, 50)
	w := NewWorker(g, jobs, nil, nil, WorkerConfig{})

	w.runCycle(context.Background())

	require.Len(t, g.modifyCalls(), 1)
	assert.Zero(t, jobs.Len(), "closed position must not stay under supervision")
}

func TestWorker_TransientFailureRetries(t *testing.T) {
	g := eurusdGateway()
	delete(g.ticks, "EURUSD") // терминал временно без котировки

	jobs := NewRegistry()
	jobs.Set(1, 50)
	w := NewWorker(g, jobs, nil, nil, WorkerConfig{})

	w.runCycle(context.Background())
	assert.Equal(t, 1, jobs.Len(), "transient failure must not drop the job")
	assert.Empty(t, g.modifyCalls())

	// котировка вернулась — следующий цикл дорабатывает
	g.mu.Lock()
	g.ticks["EURUSD"] = models.Tick{Symbol: "EURUSD", Bid: 1.1999, Ask: 1.2000}
	g.mu.Unlock()

	w.runCycle(context.Background())
	assert.Len(t, g.modifyCalls(), 1)
}

func TestWorker_FailureIsolatedPerJob(t *testing.T) {
	g := eurusdGateway()
	g.positions[2] = models.Position{
		Ticket: 2, Symbol: "XAUUSD", Side: models.SideShort,
		OpenPrice: 2400, SL: 0, TP: 2300,
	}
	// тика по XAUUSD нет — джоб 2 падает, джоб 1 должен отработать

	jobs := NewRegistry()
	jobs.Set(1, 50)
	jobs.Set(2, 100)
	w := NewWorker(g, jobs, nil, nil, WorkerConfig{})

	w.runCycle(context.Background())

	calls := g.modifyCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, int64(1), calls[0].Ticket)
	assert.Equal(t, 2, jobs.Len())
}

func TestWorker_EvictsAfterMaxFailures(t *testing.T) {
	g := eurusdGateway()
	delete(g.ticks, "EURUSD")

	jobs := NewRegistry()
	jobs.Set(1, 50)
	n := &captureNotifier{}
	w := NewWorker(g, jobs, n, nil, WorkerConfig{MaxFailures: 2})

	w.runCycle(context.Background())
	assert.Equal(t, 1, jobs.Len())

	w.runCycle(context.Background())
	assert.Zero(t, jobs.Len(), "job must be evicted after MaxFailures consecutive failures")
	assert.NotEmpty(t, n.messages())
}

func TestWorker_SuccessResetsFailureCounter(t *testing.T) {
	g := eurusdGateway()
	delete(g.ticks, "EURUSD")

	jobs := NewRegistry()
	jobs.Set(1, 50)
	w := NewWorker(g, jobs, nil, nil, WorkerConfig{MaxFailures: 2})

	w.runCycle(context.Background()) // fail #1

	g.mu.Lock()
	g.ticks["EURUSD"] = models.Tick{Symbol: "EURUSD", Bid: 1.1999, Ask: 1.2000}
	g.mu.Unlock()
	w.runCycle(context.Background()) // success, счётчик в ноль

	g.mu.Lock()
	delete(g.ticks, "EURUSD")
	g.mu.Unlock()
	w.runCycle(context.Background()) // fail #1 заново

	assert.Equal(t, 1, jobs.Len())
}

func TestWorker_ReenableResetsFailureCounter(t *testing.T) {
	g := eurusdGateway()
	delete(g.ticks, "EURUSD")

	jobs := NewRegistry()
	jobs.Set(1, 50)
	w := NewWorker(g, jobs, nil, nil, WorkerConfig{MaxFailures: 2})

	w.runCycle(context.Background()) // fail #1 по старому джобу

	// снять и включить заново через API — это новый джоб
	jobs.Remove(1)
	jobs.Set(1, 50)

	w.runCycle(context.Background()) // fail #1 по новому, не #2
	assert.Equal(t, 1, jobs.Len(), "re-enabled job must start with a clean failure count")

	w.runCycle(context.Background()) // fail #2 по новому
	assert.Zero(t, jobs.Len())
}

// blockingGateway виснет на первом же запросе позиции, пока его не отпустят.
type blockingGateway struct {
	*fakeGateway
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *blockingGateway) Position(ctx context.Context, ticket int64) (models.Position, bool, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.fakeGateway.Position(ctx, ticket)
}

func TestWorker_StopAbandonsStuckCycle(t *testing.T) {
	g := &blockingGateway{
		fakeGateway: eurusdGateway(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	defer close(g.release)

	jobs := NewRegistry()
	jobs.Set(1, 50)
	const stopTimeout = 50 * time.Millisecond
	w := NewWorker(g, jobs, nil, nil, WorkerConfig{
		Interval:    time.Millisecond,
		StopTimeout: stopTimeout,
	})

	w.Start()
	select {
	case <-g.entered:
	case <-time.After(time.Second):
		t.Fatal("cycle never reached the gateway")
	}

	start := time.Now()
	w.Stop()
	elapsed := time.Since(start)

	// Stop дождался таймаута и вернулся, а не повис вместе с циклом
	assert.GreaterOrEqual(t, elapsed, stopTimeout)
	assert.Less(t, elapsed, time.Second)
	assert.False(t, w.Running())
}

func TestWorker_StartStopLifecycle(t *testing.T) {
	g := eurusdGateway()
	jobs := NewRegistry()
	probe := &fakeProbe{}
	w := NewWorker(g, jobs, nil, probe, WorkerConfig{
		Interval:    10 * time.Millisecond,
		StopTimeout: time.Second,
	})

	w.Start()
	assert.True(t, w.Running())

	// повторный старт — no-op, вторая горутина не поднимается
	w.Start()
	assert.True(t, w.Running())

	assert.Eventually(t, probe.isRunning, time.Second, 5*time.Millisecond)

	w.Stop()
	assert.False(t, w.Running())
	assert.False(t, probe.isRunning())

	// стоп по остановленному — тоже no-op
	w.Stop()
	assert.False(t, w.Running())
}

func TestWorker_StopWaitsForCycleEnd(t *testing.T) {
	g := eurusdGateway()
	jobs := NewRegistry()
	jobs.Set(1, 50)
	w := NewWorker(g, jobs, nil, nil, WorkerConfig{
		Interval:    5 * time.Millisecond,
		StopTimeout: time.Second,
	})

	w.Start()
	time.Sleep(30 * time.Millisecond)
	w.Stop()

	// после Stop новых модификаций не появляется
	before := len(g.modifyCalls())
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, before, len(g.modifyCalls()))
}
