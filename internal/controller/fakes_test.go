package controller

import (
	"context"
	"sync"

	"dashboard/internal/model"
)

// stubSource answers immediately and records every request.
type stubSource struct {
	mu         sync.Mutex
	charts     []model.ChartCatalogEntry
	chartsErr  error
	chartCalls int
	users      func(n model.TopN) ([]model.DataPoint, error)
	requests   []model.TopN
}

func (s *stubSource) FetchCharts(ctx context.Context) ([]model.ChartCatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chartCalls++
	return s.charts, s.chartsErr
}

func (s *stubSource) FetchTopUsers(ctx context.Context, n model.TopN) ([]model.DataPoint, error) {
	s.mu.Lock()
	s.requests = append(s.requests, n)
	users := s.users
	s.mu.Unlock()
	if users == nil {
		return []model.DataPoint{}, nil
	}
	return users(n)
}

func (s *stubSource) Requests() []model.TopN {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.TopN(nil), s.requests...)
}

func (s *stubSource) ChartCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chartCalls
}

type reply struct {
	data []model.DataPoint
	err  error
}

type pendingCall struct {
	n     model.TopN
	reply chan reply
}

// gatedSource blocks every fetch until the test answers it, which lets
// tests choose the order in which overlapping refreshes resolve.
type gatedSource struct {
	calls chan pendingCall
}

func newGatedSource() *gatedSource {
	return &gatedSource{calls: make(chan pendingCall, 16)}
}

func (g *gatedSource) FetchCharts(ctx context.Context) ([]model.ChartCatalogEntry, error) {
	return nil, nil
}

func (g *gatedSource) FetchTopUsers(ctx context.Context, n model.TopN) ([]model.DataPoint, error) {
	call := pendingCall{n: n, reply: make(chan reply, 1)}
	g.calls <- call
	select {
	case r := <-call.reply:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func points(names ...string) []model.DataPoint {
	out := make([]model.DataPoint, len(names))
	for i, n := range names {
		out[i] = model.DataPoint{Name: n, Value: float64(len(names) - i)}
	}
	return out
}
