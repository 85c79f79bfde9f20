package store

import (
	"errors"
	"sync"
	"testing"

	"dashboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return New(model.DefaultChartKind, model.NewTopN(model.DefaultTopN))
}

func TestNew_Defaults(t *testing.T) {
	s := newTestStore()

	st := s.Snapshot()
	assert.Equal(t, model.ChartBar, st.ChartKind)
	assert.Equal(t, "5", st.TopN.String())
	assert.Empty(t, st.Catalog)
	assert.Empty(t, st.Dataset)
	assert.NoError(t, st.CatalogErr)
	assert.NoError(t, st.DataErr)
}

func TestStore_NotifiesOnlyOnChange(t *testing.T) {
	s := newTestStore()
	var fields []Field
	s.Subscribe(func(c Change) { fields = append(fields, c.Field) })

	s.SetChartKind(model.ChartBar)
	s.SetTopN(model.NewTopN(5))
	s.SetChartKind(model.ChartPie)
	s.SetTopN(model.ParseTopN("10"))
	s.SetTopN(model.ParseTopN("10"))

	assert.Equal(t, []Field{FieldChartKind, FieldTopN}, fields)
	assert.Equal(t, model.ChartPie, s.ChartKind())
	assert.Equal(t, "10", s.TopN().String())
}

func TestStore_ChangeCarriesState(t *testing.T) {
	s := newTestStore()
	var got Change
	s.Subscribe(func(c Change) { got = c })

	s.PublishDataset([]model.DataPoint{{Name: "alice", Value: 10}})

	assert.Equal(t, FieldDataset, got.Field)
	assert.Equal(t, []model.DataPoint{{Name: "alice", Value: 10}}, got.State.Dataset)
}

func TestStore_PublishReplacesWholesale(t *testing.T) {
	s := newTestStore()
	first := []model.DataPoint{{Name: "alice", Value: 10}, {Name: "bob", Value: 7}}
	s.PublishDataset(first)
	first[0].Name = "mallory"

	assert.Equal(t, "alice", s.Dataset()[0].Name)

	s.PublishDataset([]model.DataPoint{{Name: "carol", Value: 3}})
	assert.Equal(t, []model.DataPoint{{Name: "carol", Value: 3}}, s.Dataset())

	out := s.Dataset()
	out[0].Value = 0
	assert.Equal(t, 3.0, s.Dataset()[0].Value)
}

func TestStore_FailureKeepsData(t *testing.T) {
	s := newTestStore()
	s.SetCatalog([]model.ChartCatalogEntry{{Type: model.ChartBar}})
	s.PublishDataset([]model.DataPoint{{Name: "alice", Value: 10}})

	boom := errors.New("boom")
	s.RecordFailure(FailureData, boom)
	s.RecordFailure(FailureCatalog, boom)

	st := s.Snapshot()
	assert.Equal(t, []model.DataPoint{{Name: "alice", Value: 10}}, st.Dataset)
	assert.Len(t, st.Catalog, 1)
	assert.ErrorIs(t, st.DataErr, boom)
	assert.ErrorIs(t, st.CatalogErr, boom)
	assert.Equal(t, model.ChartBar, st.ChartKind)

	s.PublishDataset(nil)
	assert.NoError(t, s.Snapshot().DataErr)
	assert.Error(t, s.Snapshot().CatalogErr)

	s.ClearFailure(FailureCatalog)
	assert.NoError(t, s.Snapshot().CatalogErr)
}

func TestStore_ClearFailureWithoutFailureIsSilent(t *testing.T) {
	s := newTestStore()
	calls := 0
	s.Subscribe(func(Change) { calls++ })

	s.ClearFailure(FailureData)

	assert.Zero(t, calls)
}

func TestStore_Unsubscribe(t *testing.T) {
	s := newTestStore()
	var a, b int
	unsubA := s.Subscribe(func(Change) { a++ })
	s.Subscribe(func(Change) { b++ })

	s.SetChartKind(model.ChartLine)
	unsubA()
	s.SetChartKind(model.ChartArea)

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestStore_ListenerMayReadStore(t *testing.T) {
	s := newTestStore()
	var seen model.ChartKind
	s.Subscribe(func(Change) { seen = s.ChartKind() })

	s.SetChartKind(model.ChartRadar)

	assert.Equal(t, model.ChartRadar, seen)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := newTestStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.PublishDataset([]model.DataPoint{{Name: "u", Value: float64(i)}})
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()

	require.Len(t, s.Dataset(), 1)
}

func TestField_String(t *testing.T) {
	assert.Equal(t, "top_n", FieldTopN.String())
	assert.Equal(t, "unknown", Field(42).String())
}
