package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/metrics"
)

// ErrQueueFull is returned by Track when no worker can accept the order.
var ErrQueueFull = errors.New("settlement queue is full")

// SettlementChecker exposes the payment functionality required by the tracker.
type SettlementChecker interface {
	CheckSettlement(ctx context.Context, customerID, orderID string) (*model.MasterOrder, error)
}

// SettlementState is the tracking outcome for one order.
type SettlementState string

const (
	SettlementPending  SettlementState = "pending"
	SettlementSettled  SettlementState = "settled"
	SettlementTimedOut SettlementState = "timed_out"
	SettlementFailed   SettlementState = "failed"
	// SettlementUntracked means the payment step succeeded but the order could
	// not be queued; callers re-query settlement to start tracking later.
	SettlementUntracked SettlementState = "untracked"
)

// Settlement is a point-in-time view of a tracked order.
type Settlement struct {
	OrderID   string
	State     SettlementState
	Observed  model.AggregateStatus
	Error     string
	UpdatedAt time.Time
}

type settlementJob struct {
	customerID string
	orderID    string
	generation uint64
}

// SettlementTracker polls tracked orders until they show as PAID.
type SettlementTracker struct {
	checker      SettlementChecker
	pollInterval time.Duration
	timeout      time.Duration
	workers      int
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time

	jobs   chan settlementJob
	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu         sync.Mutex
	generation uint64
	states     map[string]Settlement
}

// NewSettlementTracker constructs the tracker worker pool.
func NewSettlementTracker(checker SettlementChecker, pollInterval, timeout time.Duration, workers int, m *metrics.Metrics, logger *slog.Logger) *SettlementTracker {
	if workers <= 0 {
		workers = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &SettlementTracker{
		checker:      checker,
		pollInterval: pollInterval,
		timeout:      timeout,
		workers:      workers,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
		jobs:         make(chan settlementJob, workers*16),
		states:       make(map[string]Settlement),
	}
}

// Start launches the workers.
func (t *SettlementTracker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	for i := 0; i < t.workers; i++ {
		t.wg.Add(1)
		go t.worker(runCtx)
	}
}

// Stop cancels in-flight polling and waits for all workers to finish.
func (t *SettlementTracker) Stop() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.mu.Unlock()

	t.wg.Wait()
}

// Track queues orderID for settlement polling. Tracking an order that is
// already pending is a no-op.
func (t *SettlementTracker) Track(customerID, orderID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.states[orderID]; ok && s.State == SettlementPending {
		return nil
	}

	job := settlementJob{customerID: customerID, orderID: orderID, generation: t.generation}
	select {
	case t.jobs <- job:
	default:
		return ErrQueueFull
	}
	t.states[orderID] = Settlement{OrderID: orderID, State: SettlementPending, UpdatedAt: t.now()}
	return nil
}

// Status reports the tracking state of orderID.
func (t *SettlementTracker) Status(orderID string) (Settlement, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.states[orderID]
	return s, ok
}

// Reset forgets every tracked order. Polling started before the reset stops
// at its next check without recording a result.
func (t *SettlementTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.generation++
	t.states = make(map[string]Settlement)
}

func (t *SettlementTracker) worker(ctx context.Context) {
	defer t.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-t.jobs:
			t.follow(ctx, job)
		}
	}
}

func (t *SettlementTracker) follow(ctx context.Context, job settlementJob) {
	deadline := time.NewTimer(t.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		if !t.current(job) {
			return
		}
		if t.check(ctx, job) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			t.finish(job, SettlementTimedOut, "", nil)
			t.logger.Warn("settlement not observed in time",
				slog.String("order_id", job.orderID),
				slog.Duration("timeout", t.timeout))
			return
		case <-ticker.C:
		}
	}
}

// check polls once and reports whether tracking of job is over.
func (t *SettlementTracker) check(ctx context.Context, job settlementJob) bool {
	order, err := t.checker.CheckSettlement(ctx, job.customerID, job.orderID)
	if ctx.Err() != nil {
		return true
	}

	var race *domainErrors.SettlementRaceError
	switch {
	case err == nil:
		t.finish(job, SettlementSettled, order.Status, nil)
		t.logger.Info("order settled", slog.String("order_id", job.orderID))
		return true
	case errors.As(err, &race):
		t.observe(job, model.AggregateStatus(race.Observed))
		return false
	default:
		var observed model.AggregateStatus
		if order != nil {
			observed = order.Status
		}
		t.finish(job, SettlementFailed, observed, err)
		t.logger.Error("settlement check failed",
			slog.String("order_id", job.orderID),
			slog.String("error", err.Error()))
		return true
	}
}

func (t *SettlementTracker) current(job settlementJob) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return job.generation == t.generation
}

func (t *SettlementTracker) observe(job settlementJob, status model.AggregateStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if job.generation != t.generation {
		return
	}
	s := t.states[job.orderID]
	s.Observed = status
	s.UpdatedAt = t.now()
	t.states[job.orderID] = s
}

func (t *SettlementTracker) finish(job settlementJob, state SettlementState, observed model.AggregateStatus, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if job.generation != t.generation {
		return
	}
	if observed == "" {
		observed = t.states[job.orderID].Observed
	}
	s := Settlement{OrderID: job.orderID, State: state, Observed: observed, UpdatedAt: t.now()}
	if err != nil {
		s.Error = err.Error()
	}
	t.states[job.orderID] = s
	t.metrics.Settlements.WithLabelValues(string(state)).Inc()
}
