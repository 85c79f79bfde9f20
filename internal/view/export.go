package view

import (
	"io"

	"dashboard/internal/encoding"
	"dashboard/internal/service"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"go.uber.org/zap"
)

type exportFormat string

const (
	exportPNG  exportFormat = "png"
	exportSVG  exportFormat = "svg"
	exportPDF  exportFormat = "pdf"
	exportHTML exportFormat = "html"
	exportXLSX exportFormat = "xlsx"
)

// export writes the current dataset, drawn with the selected kind, to w.
func (mw *MainWindow) export(w io.Writer, format exportFormat) error {
	snap := mw.controller.Snapshot()
	title := mw.locale.Translate(snap.ChartKind.Label())
	width, height := mw.cfg.ChartSize.Width, mw.cfg.ChartSize.Height

	switch format {
	case exportPNG, exportSVG:
		r := service.NewChartRenderer(width, height, service.ImageFormat(format))
		r.Title = title
		return mw.controller.Render(w, r)
	case exportHTML:
		return mw.controller.Render(w, service.NewEChartsRenderer(title))
	case exportPDF:
		return service.NewPDFExporter(width, height).Export(w, title, snap.Dataset, encoding.Resolve(snap.ChartKind))
	default:
		return service.NewXLSXExporter().Export(w, title, snap.Dataset, encoding.Resolve(snap.ChartKind))
	}
}

func (mw *MainWindow) onExport(format exportFormat) {
	saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.window)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if err := mw.export(writer, format); err != nil {
			mw.logger.Error("export failed", zap.String("format", string(format)), zap.Error(err))
			dialog.ShowError(err, mw.window)
			return
		}
		mw.logger.Info("export written", zap.String("format", string(format)), zap.String("uri", writer.URI().String()))
		mw.showNotification(mw.locale.Translate("Export completed"))
	}, mw.window)

	saveDialog.SetFileName("top-users." + string(format))
	saveDialog.SetFilter(storage.NewExtensionFileFilter([]string{"." + string(format)}))
	saveDialog.Show()
}
