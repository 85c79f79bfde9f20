// Package store holds the dashboard state: the selected chart kind, the
// requested sample size, the chart catalog and the published dataset.
// Every mutation goes through a setter and is announced to subscribers.
package store

import (
	"sync"

	"dashboard/internal/model"
)

// Field names a part of the state that changed.
type Field int

const (
	FieldChartKind Field = iota
	FieldTopN
	FieldCatalog
	FieldDataset
	FieldStatus
)

func (f Field) String() string {
	switch f {
	case FieldChartKind:
		return "chart_kind"
	case FieldTopN:
		return "top_n"
	case FieldCatalog:
		return "catalog"
	case FieldDataset:
		return "dataset"
	case FieldStatus:
		return "status"
	}
	return "unknown"
}

// FailureKind distinguishes the two fetches that can fail.
type FailureKind int

const (
	FailureCatalog FailureKind = iota
	FailureData
)

// State is a point-in-time copy of the store.
type State struct {
	ChartKind model.ChartKind
	TopN      model.TopN
	Catalog   []model.ChartCatalogEntry
	Dataset   []model.DataPoint
	// CatalogErr and DataErr hold the last failure of each fetch until the
	// next success.
	CatalogErr error
	DataErr    error
}

// Change is delivered to subscribers after a mutation.
type Change struct {
	Field Field
	State State
}

// Listener receives changes. It runs on the goroutine that mutated the store.
type Listener func(Change)

type subscription struct {
	id int
	fn Listener
}

// Store is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners []subscription
	nextID    int
}

// New creates a store with the given defaults, an empty catalog and an
// empty dataset.
func New(kind model.ChartKind, n model.TopN) *Store {
	return &Store{
		state: State{
			ChartKind: kind,
			TopN:      n,
			Catalog:   []model.ChartCatalogEntry{},
			Dataset:   []model.DataPoint{},
		},
	}
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	st := s.state
	st.Catalog = append([]model.ChartCatalogEntry{}, s.state.Catalog...)
	st.Dataset = model.CloneDataset(s.state.Dataset)
	return st
}

func (s *Store) ChartKind() model.ChartKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ChartKind
}

func (s *Store) TopN() model.TopN {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.TopN
}

func (s *Store) Catalog() []model.ChartCatalogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ChartCatalogEntry{}, s.state.Catalog...)
}

func (s *Store) Dataset() []model.DataPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneDataset(s.state.Dataset)
}

// SetChartKind selects kind. Selecting the current kind is a no-op.
func (s *Store) SetChartKind(kind model.ChartKind) {
	s.update(FieldChartKind, func(st *State) bool {
		if st.ChartKind == kind {
			return false
		}
		st.ChartKind = kind
		return true
	})
}

// SetTopN stores n. It never fetches; subscribers that depend on N do.
func (s *Store) SetTopN(n model.TopN) {
	s.update(FieldTopN, func(st *State) bool {
		if st.TopN == n {
			return false
		}
		st.TopN = n
		return true
	})
}

// SetCatalog replaces the catalog and clears any catalog failure.
func (s *Store) SetCatalog(entries []model.ChartCatalogEntry) {
	cp := append([]model.ChartCatalogEntry{}, entries...)
	s.update(FieldCatalog, func(st *State) bool {
		st.Catalog = cp
		st.CatalogErr = nil
		return true
	})
}

// PublishDataset replaces the dataset wholesale and clears any data failure.
func (s *Store) PublishDataset(data []model.DataPoint) {
	cp := model.CloneDataset(data)
	s.update(FieldDataset, func(st *State) bool {
		st.Dataset = cp
		st.DataErr = nil
		return true
	})
}

// RecordFailure remembers err for kind. The catalog and dataset are kept.
func (s *Store) RecordFailure(kind FailureKind, err error) {
	s.update(FieldStatus, func(st *State) bool {
		switch kind {
		case FailureCatalog:
			st.CatalogErr = err
		case FailureData:
			st.DataErr = err
		}
		return true
	})
}

// ClearFailure forgets the last failure for kind.
func (s *Store) ClearFailure(kind FailureKind) {
	s.update(FieldStatus, func(st *State) bool {
		switch kind {
		case FailureCatalog:
			if st.CatalogErr == nil {
				return false
			}
			st.CatalogErr = nil
		case FailureData:
			if st.DataErr == nil {
				return false
			}
			st.DataErr = nil
		}
		return true
	})
}

// Subscribe registers fn for every change and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// update applies mutate under the write lock and notifies listeners outside
// it when mutate reports a change.
func (s *Store) update(field Field, mutate func(*State) bool) {
	s.mu.Lock()
	if !mutate(&s.state) {
		s.mu.Unlock()
		return
	}
	change := Change{Field: field, State: s.snapshotLocked()}
	listeners := append([]subscription(nil), s.listeners...)
	s.mu.Unlock()

	for _, sub := range listeners {
		sub.fn(change)
	}
}
