// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	workerpool "github.com/okian/mindcheck/internal/adapters/mq/worker"
	"github.com/okian/mindcheck/internal/domain/assessment"
	"github.com/okian/mindcheck/internal/domain/evaluation"
	"github.com/okian/mindcheck/internal/domain/keywords"
	"github.com/okian/mindcheck/internal/domain/rules"
	"github.com/okian/mindcheck/pkg/logger"
	"github.com/okian/mindcheck/pkg/metrics"
)

const defaultMaxBatchSize = 100

// Assessment is an evaluated snapshot with its identity.
type Assessment struct {
	ID          uuid.UUID `json:"id"`
	EvaluatedAt time.Time `json:"evaluated_at"`
	evaluation.Result
}

// BatchItem is one entry of a batch response. Exactly one of Assessment
// and Error is set.
type BatchItem struct {
	Index      int         `json:"index"`
	Assessment *Assessment `json:"assessment,omitempty"`
	Error      string      `json:"error,omitempty"`
	Err        error       `json:"-"`
}

// Service evaluates snapshots and implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	evaluator  *evaluation.Evaluator
	workerPool *workerpool.Pool

	// Configuration
	workerCount  int
	maxBatchSize int
	triggers     []keywords.Trigger
	now          func() time.Time

	// State
	started bool

	// Counters reported by GetStats.
	evaluations    atomic.Int64
	emergencies    atomic.Int64
	inputErrors    atomic.Int64
	internalErrors atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of batch worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithMaxBatchSize caps the number of snapshots per batch.
func WithMaxBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.maxBatchSize = size
		}
	}
}

// WithTriggers sets the keyword triggers scanned in free text.
func WithTriggers(triggers []keywords.Trigger) Option {
	return func(s *Service) {
		if triggers != nil {
			s.triggers = triggers
		}
	}
}

// WithClock sets the time source for evaluated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration. Single
// evaluations are available immediately; batches need Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		maxBatchSize: defaultMaxBatchSize,
		triggers:     keywords.DefaultTriggers(),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.evaluator = evaluation.New(
		evaluation.WithScanner(keywords.NewScanner(keywords.WithTriggers(s.triggers))),
		evaluation.WithLogger(s.logger.Named("evaluator")),
	)

	return s
}

// Start starts the batch worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting assessment service...")

	s.workerPool = workerpool.NewPool(s.workerCount, s.evaluator,
		workerpool.WithPoolLogger(s.logger.Named("worker-pool")))
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "assessment service started",
		logger.Int("workers", s.workerCount),
		logger.Int("maxBatchSize", s.maxBatchSize),
		logger.Int("triggers", len(s.triggers)),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping assessment service...")

	if s.workerPool != nil {
		s.workerPool.Stop()
		s.workerPool = nil
	}

	s.started = false
	s.logger.Info(context.Background(), "assessment service stopped")
}

// Evaluate evaluates one snapshot. Errors wrap assessment.ErrInvalidInput
// or evaluation.ErrInternal.
func (s *Service) Evaluate(ctx context.Context, snap assessment.Snapshot) (Assessment, error) {
	start := time.Now()
	res, err := s.evaluator.Evaluate(ctx, snap)
	return s.record(ctx, res, err, time.Since(start))
}

// EvaluateBatch evaluates every snapshot on the worker pool. Per-item
// failures are reported in the item; the returned error covers the batch
// as a whole.
func (s *Service) EvaluateBatch(ctx context.Context, snaps []assessment.Snapshot) ([]BatchItem, error) {
	switch {
	case len(snaps) == 0:
		return nil, ErrEmptyBatch
	case len(snaps) > s.maxBatchSize:
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(snaps), s.maxBatchSize)
	}

	s.mu.RLock()
	pool := s.workerPool
	s.mu.RUnlock()
	if pool == nil {
		return nil, ErrNotStarted
	}

	start := time.Now()
	outcomes, err := pool.Evaluate(ctx, snaps)
	if err != nil {
		return nil, err
	}
	metrics.RecordBatchSize(len(snaps))

	// Per-item latency is not observed on the pool; the batch average is recorded instead.
	avg := time.Since(start) / time.Duration(len(snaps))
	items := make([]BatchItem, len(outcomes))
	for i, o := range outcomes {
		items[i].Index = i
		a, err := s.record(ctx, o.Result, o.Err, avg)
		if err != nil {
			items[i].Err = err
			items[i].Error = err.Error()
			continue
		}
		items[i].Assessment = &a
	}

	s.logger.Debug(ctx, "batch evaluated", logger.Int("size", len(snaps)))
	return items, nil
}

// record turns an evaluator outcome into an Assessment and updates
// metrics, counters and logs. Free text is never logged.
func (s *Service) record(ctx context.Context, res evaluation.Result, err error, latency time.Duration) (Assessment, error) {
	if err != nil {
		var ie *assessment.InputError
		switch {
		case errors.As(err, &ie):
			s.inputErrors.Add(1)
			metrics.RecordInputError(ie.Field)
			s.logger.Debug(ctx, "snapshot rejected", logger.String("field", ie.Field), logger.String("reason", ie.Reason))
		case errors.Is(err, evaluation.ErrInternal):
			s.internalErrors.Add(1)
			metrics.RecordInternalError()
			s.logger.Error(ctx, "evaluation invariant violated", logger.Error(err))
		}
		return Assessment{}, err
	}

	a := Assessment{
		ID:          uuid.New(),
		EvaluatedAt: s.now().UTC(),
		Result:      res,
	}

	s.evaluations.Add(1)
	metrics.RecordEvaluation(res.Tier, res.Score, float64(latency.Microseconds())/1000)
	for _, p := range res.Patterns {
		metrics.RecordPattern(p)
	}
	for _, src := range res.EmergencySources {
		metrics.RecordEmergency(src)
	}

	if res.Emergency() {
		s.emergencies.Add(1)
		s.logger.Warn(ctx, "emergency assessment",
			logger.String("id", a.ID.String()),
			logger.Int("score", res.Score),
			logger.Strings("sources", res.EmergencySources),
		)
	}

	return a, nil
}

// Catalog describes the rule catalog.
func (s *Service) Catalog() []rules.Descriptor {
	return rules.Describe()
}

// Tiers returns the severity tiers.
func (s *Service) Tiers() []rules.Tier {
	return rules.Tiers()
}

// Triggers returns the keyword triggers in use.
func (s *Service) Triggers() []keywords.Trigger {
	return s.evaluator.Triggers()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"maxBatchSize":   s.maxBatchSize,
		"evaluations":    s.evaluations.Load(),
		"emergencies":    s.emergencies.Load(),
		"inputErrors":    s.inputErrors.Load(),
		"internalErrors": s.internalErrors.Load(),
	}
}
