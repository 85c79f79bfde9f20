package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dashboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLoader_LoadsOnce(t *testing.T) {
	st := newStore()
	src := &stubSource{charts: []model.ChartCatalogEntry{{Type: model.ChartBar}, {Type: model.ChartPie}}}
	loader := NewCatalogLoader(st, src, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, loader.Load(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.ChartCalls())
	assert.Equal(t, src.charts, st.Catalog())
}

func TestCatalogLoader_FailureLeavesCatalogEmpty(t *testing.T) {
	st := newStore()
	boom := errors.New("service down")
	src := &stubSource{chartsErr: boom}
	loader := NewCatalogLoader(st, src, nil)

	err := loader.Load(context.Background())
	require.ErrorIs(t, err, boom)
	assert.ErrorIs(t, loader.Load(context.Background()), boom)

	assert.Equal(t, 1, src.ChartCalls())
	assert.Empty(t, st.Catalog())
	assert.ErrorIs(t, st.Snapshot().CatalogErr, boom)
}

func TestCatalogLoader_UnknownKindsKept(t *testing.T) {
	st := newStore()
	src := &stubSource{charts: []model.ChartCatalogEntry{{Type: "scatter"}}}

	require.NoError(t, NewCatalogLoader(st, src, nil).Load(context.Background()))

	assert.Equal(t, []model.ChartCatalogEntry{{Type: "scatter"}}, st.Catalog())
}
