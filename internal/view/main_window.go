package view

import (
	"bytes"
	"fmt"
	"sync"

	"dashboard/internal/controller"
	"dashboard/internal/model"
	"dashboard/internal/service"
	"dashboard/internal/store"
	"dashboard/pkg/config"
	"dashboard/pkg/localization"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

const windowTitle = "Top Users Dashboard"

type MainWindow struct {
	app        fyne.App
	window     fyne.Window
	controller *controller.DashboardController
	locale     *localization.Locale
	cfg        *config.AppConfig
	logger     *zap.Logger

	// saveConfig persists the language choice.
	saveConfig func(*config.AppConfig) error

	selector    *widget.Select
	kindLabel   *widget.Label
	nLabel      *widget.Label
	nEntry      *widget.Entry
	updateBtn   *widget.Button
	status      *widget.Label
	chart       *canvas.Image
	unsubscribe func()

	mu       sync.Mutex
	labelMap map[string]model.ChartKind
}

func NewMainWindow(app fyne.App, ctrl *controller.DashboardController, locale *localization.Locale, cfg *config.AppConfig, logger *zap.Logger) *MainWindow {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locale == nil {
		locale = localization.Identity()
	}
	if cfg == nil {
		cfg = config.Default()
	}

	return &MainWindow{
		app:        app,
		window:     app.NewWindow(locale.Translate(windowTitle)),
		controller: ctrl,
		locale:     locale,
		cfg:        cfg,
		logger:     logger,
		saveConfig: config.SaveConfig,
		labelMap:   map[string]model.ChartKind{},
	}
}

func (mw *MainWindow) Window() fyne.Window {
	return mw.window
}

// Build creates the widgets and subscribes them to the dashboard state.
func (mw *MainWindow) Build() {
	mw.window.SetMainMenu(mw.setupMenu())

	mw.selector = widget.NewSelect(nil, mw.onKindSelected)
	mw.nEntry = widget.NewEntry()
	mw.nEntry.SetText(mw.controller.Snapshot().TopN.String())
	mw.nEntry.OnChanged = mw.controller.SetTopN
	mw.updateBtn = widget.NewButton(mw.locale.Translate("Update"), mw.controller.Update)
	mw.kindLabel = widget.NewLabel(mw.locale.Translate("Chart type"))
	mw.nLabel = widget.NewLabel(mw.locale.Translate("Number of users"))
	mw.status = widget.NewLabel(mw.locale.Translate("Loading..."))
	mw.chart = canvas.NewImageFromResource(nil)
	mw.chart.FillMode = canvas.ImageFillContain
	mw.chart.SetMinSize(fyne.NewSize(float32(mw.cfg.ChartSize.Width)/2, float32(mw.cfg.ChartSize.Height)/2))

	controls := container.NewHBox(
		mw.kindLabel, mw.selector,
		mw.nLabel, container.NewGridWrap(fyne.NewSize(80, mw.nEntry.MinSize().Height), mw.nEntry),
		mw.updateBtn,
	)
	content := container.NewBorder(
		container.NewVBox(controls, widget.NewSeparator()),
		mw.status,
		nil,
		nil,
		mw.chart,
	)
	mw.window.SetContent(content)

	size := mw.cfg.WindowSize
	if size.Width > 0 && size.Height > 0 {
		mw.window.Resize(fyne.NewSize(float32(size.Width), float32(size.Height)))
	}

	mw.unsubscribe = mw.controller.Subscribe(mw.onChange)
	mw.window.SetOnClosed(mw.unsubscribe)

	mw.refreshSelector()
	mw.refreshStatus()
	mw.refreshChart()
}

func (mw *MainWindow) Show() {
	mw.Build()
	mw.window.ShowAndRun()
}

func (mw *MainWindow) setupMenu() *fyne.MainMenu {
	fileMenu := fyne.NewMenu(mw.locale.Translate("File"),
		fyne.NewMenuItem(mw.locale.Translate("Export PNG"), func() { mw.onExport(exportPNG) }),
		fyne.NewMenuItem(mw.locale.Translate("Export SVG"), func() { mw.onExport(exportSVG) }),
		fyne.NewMenuItem(mw.locale.Translate("Export PDF"), func() { mw.onExport(exportPDF) }),
		fyne.NewMenuItem(mw.locale.Translate("Export HTML"), func() { mw.onExport(exportHTML) }),
		fyne.NewMenuItem(mw.locale.Translate("Export XLSX"), func() { mw.onExport(exportXLSX) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem(mw.locale.Translate("Exit"), func() { mw.app.Quit() }),
	)

	langMenu := fyne.NewMenu(mw.locale.Translate("Language"),
		fyne.NewMenuItem("English", func() { mw.changeLanguage("en") }),
		fyne.NewMenuItem("Русский", func() { mw.changeLanguage("ru") }),
	)

	helpMenu := fyne.NewMenu(mw.locale.Translate("Help"),
		fyne.NewMenuItem(mw.locale.Translate("About"), mw.showAbout),
	)

	return fyne.NewMainMenu(fileMenu, langMenu, helpMenu)
}

// onChange runs on whichever goroutine mutated the store.
func (mw *MainWindow) onChange(c store.Change) {
	switch c.Field {
	case store.FieldCatalog:
		fyne.Do(mw.refreshSelector)
	case store.FieldStatus:
		fyne.Do(mw.refreshStatus)
	case store.FieldDataset:
		fyne.Do(func() {
			mw.refreshStatus()
			mw.refreshChart()
		})
	case store.FieldChartKind:
		fyne.Do(mw.refreshChart)
	}
}

func (mw *MainWindow) onKindSelected(label string) {
	mw.mu.Lock()
	kind, ok := mw.labelMap[label]
	mw.mu.Unlock()
	if ok {
		mw.controller.SelectChartKind(kind)
	}
}

// refreshSelector rebuilds the selector from the catalog, keeping catalog
// order and the current selection.
func (mw *MainWindow) refreshSelector() {
	options := mw.controller.Options()
	current := mw.controller.Snapshot().ChartKind

	labels := make([]string, 0, len(options))
	labelMap := make(map[string]model.ChartKind, len(options))
	selected := ""
	for _, o := range options {
		label := mw.locale.Translate(o.Label)
		labels = append(labels, label)
		labelMap[label] = o.Kind
		if o.Kind == current {
			selected = label
		}
	}

	mw.mu.Lock()
	mw.labelMap = labelMap
	mw.mu.Unlock()

	mw.selector.Options = labels
	mw.selector.Refresh()
	if selected != "" {
		mw.selector.SetSelected(selected)
	}
}

// refreshStatus reads the current state; notifications for different
// fields may arrive out of order.
func (mw *MainWindow) refreshStatus() {
	mw.status.SetText(statusText(mw.locale, mw.controller.Snapshot()))
}

func statusText(locale *localization.Locale, st store.State) string {
	var msg string
	switch {
	case st.DataErr != nil && st.CatalogErr != nil:
		msg = locale.Translate("Chart list unavailable") + "; " + locale.Translate("Data unavailable, showing last result")
	case st.DataErr != nil:
		msg = locale.Translate("Data unavailable, showing last result")
	case st.CatalogErr != nil:
		msg = locale.Translate("Chart list unavailable")
	case len(st.Dataset) == 0:
		msg = locale.Translate("No data")
	}
	return msg
}

func (mw *MainWindow) refreshChart() {
	renderer := service.NewChartRenderer(mw.cfg.ChartSize.Width, mw.cfg.ChartSize.Height, service.FormatPNG)
	renderer.Title = mw.locale.Translate(mw.controller.Snapshot().ChartKind.Label())

	var buf bytes.Buffer
	if err := mw.controller.Render(&buf, renderer); err != nil {
		mw.logger.Error("chart render failed", zap.Error(err))
		return
	}
	mw.chart.Resource = fyne.NewStaticResource("chart.png", buf.Bytes())
	mw.chart.Refresh()
}

func (mw *MainWindow) changeLanguage(lang string) {
	if err := mw.locale.SetLanguage(lang); err != nil {
		mw.logger.Warn("language change failed", zap.String("language", lang), zap.Error(err))
		return
	}

	mw.cfg.Language = lang
	if err := mw.saveConfig(mw.cfg); err != nil {
		mw.logger.Warn("saving config failed", zap.Error(err))
	}

	mw.window.SetMainMenu(mw.setupMenu())
	mw.window.SetTitle(mw.locale.Translate(windowTitle))
	mw.kindLabel.SetText(mw.locale.Translate("Chart type"))
	mw.nLabel.SetText(mw.locale.Translate("Number of users"))
	mw.updateBtn.SetText(mw.locale.Translate("Update"))
	mw.refreshSelector()
	mw.refreshStatus()
	mw.refreshChart()
}

func (mw *MainWindow) showAbout() {
	text := fmt.Sprintf("%s\n%s 1.0.0\nsession %s",
		mw.locale.Translate(windowTitle),
		mw.locale.Translate("Version"),
		mw.controller.SessionID())

	dialog.ShowCustom(
		mw.locale.Translate("About"),
		mw.locale.Translate("Close"),
		widget.NewLabel(text),
		mw.window,
	)
}

func (mw *MainWindow) showNotification(message string) {
	mw.app.SendNotification(fyne.NewNotification(mw.locale.Translate("Notification"), message))
}
