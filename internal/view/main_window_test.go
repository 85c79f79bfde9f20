package view

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"dashboard/internal/controller"
	"dashboard/internal/model"
	"dashboard/internal/store"
	"dashboard/pkg/config"
	"dashboard/pkg/localization"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct{}

func (fakeSource) FetchCharts(ctx context.Context) ([]model.ChartCatalogEntry, error) {
	return []model.ChartCatalogEntry{{Type: model.ChartBar}, {Type: model.ChartPie}, {Type: model.ChartRadar}}, nil
}

func (fakeSource) FetchTopUsers(ctx context.Context, n model.TopN) ([]model.DataPoint, error) {
	return []model.DataPoint{{Name: "alice", Value: 10}, {Name: "bob", Value: 5}}, nil
}

func newTestWindow(t *testing.T, lang string) (*MainWindow, *controller.DashboardController) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	ctrl := controller.NewDashboardController(fakeSource{}, controller.DefaultOptions(), nil, nil)
	ctrl.Start(context.Background())
	ctrl.Wait()
	t.Cleanup(ctrl.Close)

	locale, err := localization.NewLocale(lang)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.ChartSize = config.Size{Width: 320, Height: 200}
	mw := NewMainWindow(a, ctrl, locale, cfg, nil)
	mw.saveConfig = func(*config.AppConfig) error { return nil }
	mw.Build()
	return mw, ctrl
}

func TestMainWindow_SelectorFollowsCatalog(t *testing.T) {
	mw, _ := newTestWindow(t, "en")

	assert.Equal(t, []string{"Bar Chart", "Pie Chart", "Radar Chart"}, mw.selector.Options)
	assert.Equal(t, "Bar Chart", mw.selector.Selected)
	assert.NotNil(t, mw.chart.Resource)
}

func TestMainWindow_SelectingKindDoesNotChangeN(t *testing.T) {
	mw, ctrl := newTestWindow(t, "en")

	mw.onKindSelected("Pie Chart")
	mw.onKindSelected("Unknown")

	snap := ctrl.Snapshot()
	assert.Equal(t, model.ChartPie, snap.ChartKind)
	assert.Equal(t, "5", snap.TopN.String())
}

func TestMainWindow_ChangeLanguageRelabels(t *testing.T) {
	mw, ctrl := newTestWindow(t, "en")
	var saved *config.AppConfig
	mw.saveConfig = func(c *config.AppConfig) error {
		saved = c
		return nil
	}

	mw.changeLanguage("ru")

	require.NotNil(t, saved)
	assert.Equal(t, "ru", saved.Language)
	assert.Equal(t, "Обновить", mw.updateBtn.Text)
	assert.Equal(t, "Столбчатая диаграмма", mw.selector.Selected)

	mw.onKindSelected("Радарная диаграмма")
	assert.Equal(t, model.ChartRadar, ctrl.Snapshot().ChartKind)
}

func TestMainWindow_ChangeLanguageUnknownIsIgnored(t *testing.T) {
	mw, _ := newTestWindow(t, "en")
	mw.saveConfig = func(*config.AppConfig) error {
		t.Fatal("config must not be saved")
		return nil
	}

	mw.changeLanguage("de")

	assert.Equal(t, "en", mw.cfg.Language)
}

func TestMainWindow_Export(t *testing.T) {
	mw, ctrl := newTestWindow(t, "en")

	for _, kind := range []model.ChartKind{model.ChartBar, model.ChartPie, model.ChartRadar} {
		ctrl.SelectChartKind(kind)
		for _, format := range []exportFormat{exportPNG, exportSVG, exportPDF, exportHTML, exportXLSX} {
			var buf bytes.Buffer
			require.NoError(t, mw.export(&buf, format), "%s/%s", kind, format)
			assert.NotZero(t, buf.Len(), "%s/%s", kind, format)
		}
	}
}

func TestMainWindow_StatusFollowsCurrentState(t *testing.T) {
	mw, ctrl := newTestWindow(t, "en")

	ctrl.Store().RecordFailure(store.FailureData, errors.New("timeout"))
	mw.refreshStatus()
	assert.Equal(t, "Data unavailable, showing last result", mw.status.Text)

	ctrl.Store().PublishDataset([]model.DataPoint{{Name: "carol", Value: 3}})
	mw.refreshStatus()
	assert.Empty(t, mw.status.Text)
}

func TestStatusText(t *testing.T) {
	locale := localization.Identity()
	data := []model.DataPoint{{Name: "alice", Value: 1}}
	boom := errors.New("boom")

	tests := []struct {
		name  string
		state store.State
		want  string
	}{
		{"ok", store.State{Dataset: data}, ""},
		{"empty", store.State{}, "No data"},
		{"data failure", store.State{Dataset: data, DataErr: boom}, "Data unavailable, showing last result"},
		{"catalog failure", store.State{Dataset: data, CatalogErr: boom}, "Chart list unavailable"},
		{"both", store.State{DataErr: boom, CatalogErr: boom}, "Chart list unavailable; Data unavailable, showing last result"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusText(locale, tt.state))
		})
	}
}
