package service

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dashboard/internal/model"

	"github.com/jung-kurt/gofpdf"
	"github.com/wcharczuk/go-chart/v2/roboto"
	"github.com/xuri/excelize/v2"
)

const pdfFont = "roboto"

// PDFExporter writes an A4 page with the chart and the ranked table.
type PDFExporter struct {
	renderer *ChartRenderer
}

func NewPDFExporter(width, height int) *PDFExporter {
	return &PDFExporter{renderer: NewChartRenderer(width, height, FormatPNG)}
}

// Export writes the PDF document to w.
func (p *PDFExporter) Export(w io.Writer, title string, data []model.DataPoint, plan model.RenderPlan) error {
	var img bytes.Buffer
	if err := p.renderer.Render(&img, data, plan); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252 only; Roboto covers Cyrillic labels and names.
	pdf.AddUTF8FontFromBytes(pdfFont, "", roboto.Roboto)
	pdf.AddUTF8FontFromBytes(pdfFont, "B", roboto.Roboto)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	pdf.AddPage()
	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")

	const left, top, width = 10.0, 25.0, 190.0
	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("chart", imgOpts, &img)
	pdf.ImageOptions("chart", left, top, width, 0, false, imgOpts, 0, "")

	height := width * float64(p.renderer.Height) / float64(p.renderer.Width)
	pdf.SetY(top + height + 8)

	pdf.SetFont(pdfFont, "B", 11)
	pdf.SetFillColor(230, 230, 240)
	pdf.CellFormat(20, 8, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(110, 8, "Name", "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 8, "Value", "1", 1, "R", true, 0, "")

	pdf.SetFont(pdfFont, "", 11)
	for i, d := range data {
		pdf.CellFormat(20, 7, strconv.Itoa(i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(110, 7, d.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, strconv.FormatFloat(d.Value, 'f', -1, 64), "1", 1, "R", false, 0, "")
	}

	return pdf.Output(w)
}

// XLSXExporter writes the dataset to a worksheet with a native chart.
type XLSXExporter struct {
	Sheet string
}

func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{Sheet: "TopUsers"}
}

// Export writes the workbook to w. An empty dataset yields the header row
// only.
func (x *XLSXExporter) Export(w io.Writer, title string, data []model.DataPoint, plan model.RenderPlan) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", x.Sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(x.Sheet, "A1", &[]interface{}{"name", "value"}); err != nil {
		return err
	}
	for i, d := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(x.Sheet, cell, &[]interface{}{d.Name, d.Value}); err != nil {
			return err
		}
	}

	if len(data) > 0 && len(plan.Series) > 0 {
		charts := x.charts(title, len(data), plan)
		if err := f.AddChart(x.Sheet, "D2", charts[0], charts[1:]...); err != nil {
			return fmt.Errorf("add chart: %w", err)
		}
	}

	return f.Write(w)
}

func (x *XLSXExporter) charts(title string, n int, plan model.RenderPlan) []*excelize.Chart {
	categories := fmt.Sprintf("'%s'!$A$2:$A$%d", x.Sheet, n+1)
	values := fmt.Sprintf("'%s'!$B$2:$B$%d", x.Sheet, n+1)

	out := make([]*excelize.Chart, 0, len(plan.Series))
	for i, s := range plan.Series {
		c := &excelize.Chart{
			Type: xlsxChartType(s.Geometry),
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("'%s'!$B$1", x.Sheet),
				Categories: categories,
				Values:     values,
				Fill:       seriesFill(s),
				Line:       excelize.ChartLine{Smooth: s.Interpolation == model.InterpolationMonotone},
			}},
			Legend: excelize.ChartLegend{Position: "bottom"},
		}
		if i == 0 {
			c.Title = []excelize.RichTextRun{{Text: title}}
			c.Dimension = excelize.ChartDimension{Width: 640, Height: 400}
			if !plan.Decorations.Legend {
				c.Legend.Position = "none"
			}
		}
		if s.Geometry == model.GeometrySlice {
			vary := true
			c.VaryColors = &vary
		}
		out = append(out, c)
	}
	return out
}

// seriesFill is a solid fill in the series color. Slices get no fill so
// the workbook varies colors per point.
func seriesFill(s model.Series) excelize.Fill {
	if s.Geometry == model.GeometrySlice {
		return excelize.Fill{}
	}
	return excelize.Fill{
		Type:    "pattern",
		Pattern: 1,
		Color:   []string{strings.TrimPrefix(s.ColorAt(0), "#")},
	}
}

func xlsxChartType(g model.Geometry) excelize.ChartType {
	switch g {
	case model.GeometrySlice:
		return excelize.Pie
	case model.GeometryLine:
		return excelize.Line
	case model.GeometryArea:
		return excelize.Area
	case model.GeometryRadar:
		return excelize.Radar
	}
	return excelize.Col
}
