package controller

import (
	"context"
	"io"
	"sync"

	"dashboard/internal/encoding"
	"dashboard/internal/model"
	"dashboard/internal/observability"
	"dashboard/internal/service"
	"dashboard/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Source is everything the dashboard fetches from the data service.
type Source interface {
	CatalogSource
	DataSource
}

// Options configures a DashboardController.
type Options struct {
	DefaultKind model.ChartKind
	DefaultTopN model.TopN
	Policy      OrderPolicy
}

// DefaultOptions starts on a bar chart of the top 5 users.
func DefaultOptions() Options {
	return Options{
		DefaultKind: model.DefaultChartKind,
		DefaultTopN: model.NewTopN(model.DefaultTopN),
		Policy:      LastResolved,
	}
}

// SelectorOption is one entry of the chart kind selector.
type SelectorOption struct {
	Kind  model.ChartKind
	Label string
}

// DashboardController turns user intents into store mutations and keeps
// catalog and dataset loading running in the background.
type DashboardController struct {
	store   *store.Store
	catalog *CatalogLoader
	sync    *Synchronizer
	logger  *zap.Logger
	metrics *observability.Collector

	sessionID string

	startOnce sync.Once
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewDashboardController(source Source, opts Options, logger *zap.Logger, metrics *observability.Collector) *DashboardController {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultKind == "" {
		opts.DefaultKind = model.DefaultChartKind
	}
	if opts.DefaultTopN == (model.TopN{}) {
		opts.DefaultTopN = model.NewTopN(model.DefaultTopN)
	}

	sessionID := uuid.NewString()
	logger = logger.With(zap.String("session", sessionID))
	st := store.New(opts.DefaultKind, opts.DefaultTopN)

	return &DashboardController{
		store:     st,
		catalog:   NewCatalogLoader(st, source, logger),
		sync:      NewSynchronizer(st, source, opts.Policy, logger, metrics),
		logger:    logger,
		metrics:   metrics,
		sessionID: sessionID,
		ctx:       context.Background(),
	}
}

// SessionID identifies this dashboard session in logs.
func (c *DashboardController) SessionID() string {
	return c.sessionID
}

// Store exposes the underlying state container.
func (c *DashboardController) Store() *store.Store {
	return c.store
}

// Start loads the catalog and issues the initial refresh, both in the
// background. Only the first call has an effect.
func (c *DashboardController) Start(ctx context.Context) {
	c.startOnce.Do(func() { c.start(ctx) })
}

func (c *DashboardController) start(ctx context.Context) {
	c.mu.Lock()
	c.ctx, c.cancel = context.WithCancel(ctx)
	ctx = c.ctx
	c.mu.Unlock()

	c.logger.Info("dashboard starting",
		zap.String("chart_kind", string(c.store.ChartKind())),
		zap.String("top_n", c.store.TopN().String()),
		zap.Stringer("order_policy", c.sync.policy),
	)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.catalog.Load(ctx); err == nil && c.metrics != nil {
			c.metrics.CatalogSize.Set(float64(len(c.store.Catalog())))
		}
	}()
	c.sync.Start(ctx)
}

func (c *DashboardController) runContext() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

// SelectChartKind changes the visual encoding only; it never fetches.
func (c *DashboardController) SelectChartKind(kind model.ChartKind) {
	c.store.SetChartKind(kind)
}

// SetTopN stores raw input for N. The synchronizer refetches when the
// value actually changes.
func (c *DashboardController) SetTopN(raw string) {
	c.store.SetTopN(model.ParseTopN(raw))
}

// Update refetches with the current N, even when it has not changed.
func (c *DashboardController) Update() {
	c.sync.Trigger(c.runContext())
}

// Plan resolves the encoding of the selected kind.
func (c *DashboardController) Plan() model.RenderPlan {
	return encoding.Resolve(c.store.ChartKind())
}

// Options lists the catalog in source order as selector entries.
func (c *DashboardController) Options() []SelectorOption {
	catalog := c.store.Catalog()
	out := make([]SelectorOption, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, SelectorOption{Kind: e.Type, Label: e.Type.Label()})
	}
	return out
}

func (c *DashboardController) Snapshot() store.State {
	return c.store.Snapshot()
}

func (c *DashboardController) Subscribe(fn store.Listener) func() {
	return c.store.Subscribe(fn)
}

// Render draws the published dataset with the plan of the selected kind.
func (c *DashboardController) Render(w io.Writer, r service.Renderer) error {
	st := c.store.Snapshot()
	return r.Render(w, st.Dataset, encoding.Resolve(st.ChartKind))
}

// Wait blocks until the catalog load and every issued refresh resolved.
func (c *DashboardController) Wait() {
	c.wg.Wait()
	c.sync.Wait()
}

// Close stops reacting to N and cancels in-flight fetches.
func (c *DashboardController) Close() {
	c.sync.Stop()
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
	c.Wait()
}
