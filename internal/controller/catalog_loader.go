package controller

import (
	"context"
	"sync"

	"dashboard/internal/model"
	"dashboard/internal/store"

	"go.uber.org/zap"
)

// CatalogSource supplies the chart catalog.
type CatalogSource interface {
	FetchCharts(ctx context.Context) ([]model.ChartCatalogEntry, error)
}

// CatalogLoader fetches the catalog once per session.
type CatalogLoader struct {
	store  *store.Store
	source CatalogSource
	logger *zap.Logger

	once sync.Once
	err  error
}

func NewCatalogLoader(st *store.Store, source CatalogSource, logger *zap.Logger) *CatalogLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogLoader{store: st, source: source, logger: logger}
}

// Load issues the catalog request on the first call and returns its result
// on every call. On failure the catalog stays empty.
func (l *CatalogLoader) Load(ctx context.Context) error {
	l.once.Do(func() {
		entries, err := l.source.FetchCharts(ctx)
		if err != nil {
			l.err = err
			l.store.RecordFailure(store.FailureCatalog, err)
			l.logger.Warn("chart catalog unavailable; selector stays empty", zap.Error(err))
			return
		}
		l.store.SetCatalog(entries)
		l.logger.Info("chart catalog loaded", zap.Int("entries", len(entries)))
	})
	return l.err
}
