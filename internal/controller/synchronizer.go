package controller

import (
	"context"
	"sync"

	"dashboard/internal/model"
	"dashboard/internal/observability"
	"dashboard/internal/service"
	"dashboard/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DataSource supplies ranked users.
type DataSource interface {
	FetchTopUsers(ctx context.Context, n model.TopN) ([]model.DataPoint, error)
}

// OrderPolicy decides which of several overlapping refreshes is published.
type OrderPolicy int

const (
	// LastResolved publishes every successful response in arrival order,
	// so the most recently completed fetch wins.
	LastResolved OrderPolicy = iota
	// LatestIssued drops a response when a newer refresh has been issued
	// since it started.
	LatestIssued
)

func (p OrderPolicy) String() string {
	if p == LatestIssued {
		return "latest_issued"
	}
	return "last_resolved"
}

// Synchronizer keeps the published dataset in line with N.
type Synchronizer struct {
	store   *store.Store
	source  DataSource
	logger  *zap.Logger
	metrics *observability.Collector
	policy  OrderPolicy

	mu     sync.Mutex
	issued uint64
	unsub  func()
	wg     sync.WaitGroup

	// publishMu makes the staleness check and the store write atomic.
	// Store listeners run under it and must not call Refresh.
	publishMu sync.Mutex
}

func NewSynchronizer(st *store.Store, source DataSource, policy OrderPolicy, logger *zap.Logger, metrics *observability.Collector) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		store:   st,
		source:  source,
		logger:  logger,
		metrics: metrics,
		policy:  policy,
	}
}

// Dependencies lists the store fields whose change triggers a refresh.
func (s *Synchronizer) Dependencies() []store.Field {
	return []store.Field{store.FieldTopN}
}

func (s *Synchronizer) dependsOn(f store.Field) bool {
	for _, dep := range s.Dependencies() {
		if dep == f {
			return true
		}
	}
	return false
}

// Start subscribes to the store and issues the initial refresh with the
// current N. Refreshes run on ctx until Stop is called.
func (s *Synchronizer) Start(ctx context.Context) {
	s.mu.Lock()
	if s.unsub != nil {
		s.mu.Unlock()
		return
	}
	s.unsub = s.store.Subscribe(func(c store.Change) {
		if s.dependsOn(c.Field) {
			s.refreshAsync(ctx, c.State.TopN)
		}
	})
	s.mu.Unlock()

	s.Trigger(ctx)
}

// Stop removes the store subscription. In-flight refreshes still resolve.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
}

// Trigger refreshes with whatever N currently holds without waiting.
func (s *Synchronizer) Trigger(ctx context.Context) {
	s.refreshAsync(ctx, s.store.TopN())
}

func (s *Synchronizer) refreshAsync(ctx context.Context, n model.TopN) {
	seq := s.issue()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.resolve(ctx, seq, n)
	}()
}

// Wait blocks until every issued refresh has resolved.
func (s *Synchronizer) Wait() {
	s.wg.Wait()
}

// Refresh fetches with n and publishes the result. It is never deduplicated:
// each call issues its own request. The returned error is the fetch error;
// a response dropped by LatestIssued, failed or not, is not an error.
func (s *Synchronizer) Refresh(ctx context.Context, n model.TopN) error {
	return s.resolve(ctx, s.issue(), n)
}

func (s *Synchronizer) issue() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

func (s *Synchronizer) latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}

func (s *Synchronizer) resolve(ctx context.Context, seq uint64, n model.TopN) error {
	log := s.logger.With(
		zap.String("refresh_id", uuid.NewString()),
		zap.Uint64("seq", seq),
		zap.String("top_n", n.String()),
	)

	data, err := s.source.FetchTopUsers(ctx, n)
	if err != nil && service.Canceled(ctx, err) {
		log.Debug("refresh cancelled")
		return err
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if latest := s.latest(); s.policy == LatestIssued && seq < latest {
		if s.metrics != nil {
			s.metrics.StaleDropped.Inc()
		}
		log.Info("dropping stale response", zap.Uint64("latest_seq", latest), zap.Bool("failed", err != nil))
		return nil
	}

	if err != nil {
		s.store.RecordFailure(store.FailureData, err)
		log.Warn("refresh failed; keeping previous dataset", zap.Error(err))
		return err
	}
	s.store.PublishDataset(data)
	if s.metrics != nil {
		s.metrics.DatasetPoints.Set(float64(len(data)))
	}
	log.Debug("dataset published", zap.Int("points", len(data)))
	return nil
}
