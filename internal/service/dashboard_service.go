package service

import (
	"context"
	"errors"
	"time"

	"dashboard/internal/model"
	"dashboard/internal/observability"

	"go.uber.org/zap"
)

// Repository is the transport the service fetches through.
type Repository interface {
	FetchCharts(ctx context.Context) ([]model.ChartCatalogEntry, error)
	FetchTopUsers(ctx context.Context, n model.TopN) ([]model.DataPoint, error)
}

// DashboardService classifies, logs and measures every fetch.
type DashboardService struct {
	repo    Repository
	logger  *zap.Logger
	metrics *observability.Collector
	now     func() time.Time
}

func NewDashboardService(repo Repository, logger *zap.Logger, metrics *observability.Collector) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// FetchCharts returns the catalog or a *FetchError of kind ErrCatalogFetch.
func (s *DashboardService) FetchCharts(ctx context.Context) ([]model.ChartCatalogEntry, error) {
	start := s.now()
	entries, err := s.repo.FetchCharts(ctx)
	s.metrics.ObserveFetch(observability.EndpointCharts, s.now().Sub(start).Seconds(), err)
	if err != nil {
		fe := newFetchError(ErrCatalogFetch, "/charts", err)
		s.logFailure(ctx, fe)
		return nil, fe
	}
	s.logger.Debug("catalog fetched", zap.Int("entries", len(entries)))
	return entries, nil
}

// FetchTopUsers returns the ranked users or a *FetchError of kind ErrDataFetch.
func (s *DashboardService) FetchTopUsers(ctx context.Context, n model.TopN) ([]model.DataPoint, error) {
	start := s.now()
	data, err := s.repo.FetchTopUsers(ctx, n)
	s.metrics.ObserveFetch(observability.EndpointTopUsers, s.now().Sub(start).Seconds(), err)
	if err != nil {
		fe := newFetchError(ErrDataFetch, "/top-users", err)
		s.logFailure(ctx, fe, zap.String("top_n", n.String()))
		return nil, fe
	}
	s.logger.Debug("top users fetched",
		zap.String("top_n", n.String()),
		zap.Int("points", len(data)),
	)
	return data, nil
}

// Canceled reports whether err only reflects the cancellation of ctx.
func Canceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, context.Canceled)
}

func (s *DashboardService) logFailure(ctx context.Context, fe *FetchError, fields ...zap.Field) {
	if Canceled(ctx, fe.Err) {
		s.logger.Debug("fetch cancelled", zap.String("endpoint", fe.Endpoint))
		return
	}
	fields = append(fields,
		zap.String("endpoint", fe.Endpoint),
		zap.Error(fe.Err),
	)
	if fe.StatusCode != 0 {
		fields = append(fields, zap.Int("status", fe.StatusCode))
	}
	s.logger.Error(fe.Kind.Error(), fields...)
}
