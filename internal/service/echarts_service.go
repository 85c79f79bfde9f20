package service

import (
	"errors"
	"io"

	"dashboard/internal/model"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type htmlChart interface {
	Render(w io.Writer) error
}

// EChartsRenderer writes a self-contained interactive HTML page.
type EChartsRenderer struct {
	Title  string
	Width  string
	Height string
}

func NewEChartsRenderer(title string) *EChartsRenderer {
	return &EChartsRenderer{Title: title, Width: "900px", Height: "500px"}
}

func (e *EChartsRenderer) globals(plan model.RenderPlan) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: e.Title,
			Width:     e.Width,
			Height:    e.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: e.Title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(plan.Decorations.Legend), Bottom: "0"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(plan.Decorations.Tooltip)}),
	}
}

// Render implements Renderer.
func (e *EChartsRenderer) Render(w io.Writer, data []model.DataPoint, plan model.RenderPlan) error {
	if len(plan.Series) == 0 {
		return errors.New("render plan has no series")
	}
	switch plan.Series[0].Geometry {
	case model.GeometrySlice:
		return e.pie(data, plan).Render(w)
	case model.GeometryRadar:
		return e.radar(data, plan).Render(w)
	}
	return e.cartesian(data, plan).Render(w)
}

func names(data []model.DataPoint) []string {
	out := make([]string, len(data))
	for i, p := range data {
		out[i] = p.Name
	}
	return out
}

func (e *EChartsRenderer) pie(data []model.DataPoint, plan model.RenderPlan) *charts.Pie {
	s := plan.Series[0]
	pie := charts.NewPie()
	pie.SetGlobalOptions(e.globals(plan)...)

	items := make([]opts.PieData, len(data))
	for i, p := range data {
		items[i] = opts.PieData{
			Name:      p.Name,
			Value:     p.Value,
			ItemStyle: &opts.ItemStyle{Color: s.ColorAt(i)},
		}
	}
	pie.AddSeries(s.Name, items).SetSeriesOptions(
		charts.WithPieChartOpts(opts.PieChart{Radius: s.OuterRadius, Center: []string{"50%", "50%"}}),
	)
	return pie
}

func (e *EChartsRenderer) radar(data []model.DataPoint, plan model.RenderPlan) *charts.Radar {
	s := plan.Series[0]
	radar := charts.NewRadar()

	maxValue := 0.0
	for _, p := range data {
		if p.Value > maxValue {
			maxValue = p.Value
		}
	}
	indicators := make([]*opts.Indicator, len(data))
	for i, p := range data {
		indicators[i] = &opts.Indicator{Name: p.Name, Max: float32(maxValue)}
	}

	globals := append(e.globals(plan), charts.WithRadarComponentOpts(opts.RadarComponent{
		Indicator: indicators,
		SplitLine: &opts.SplitLine{Show: opts.Bool(plan.Decorations.Grid)},
	}))
	radar.SetGlobalOptions(globals...)

	radar.AddSeries(s.Name, []opts.RadarData{{Name: s.Name, Value: values(data)}},
		charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Stroke}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: s.Fill, Opacity: opts.Float(float32(s.FillOpacity))}),
	)
	return radar
}

// cartesian builds bar, line and area plans. A plan whose first series is
// a bar overlaps the remaining series on the bar chart.
func (e *EChartsRenderer) cartesian(data []model.DataPoint, plan model.RenderPlan) htmlChart {
	categories := names(data)
	first := plan.Series[0]

	if first.Geometry == model.GeometryBar {
		bar := charts.NewBar()
		bar.SetGlobalOptions(e.globals(plan)...)
		bar.SetXAxis(categories).AddSeries(first.Name, barItems(data, first))
		for _, s := range plan.Series[1:] {
			bar.Overlap(e.line(data, plan, s))
		}
		return bar
	}

	line := e.line(data, plan, first)
	line.SetGlobalOptions(e.globals(plan)...)
	return line
}

func barItems(data []model.DataPoint, s model.Series) []opts.BarData {
	items := make([]opts.BarData, len(data))
	for i, p := range data {
		items[i] = opts.BarData{Value: p.Value, ItemStyle: &opts.ItemStyle{Color: s.ColorAt(i)}}
	}
	return items
}

func (e *EChartsRenderer) line(data []model.DataPoint, plan model.RenderPlan, s model.Series) *charts.Line {
	items := make([]opts.LineData, len(data))
	for i, p := range data {
		items[i] = opts.LineData{Value: p.Value}
	}

	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(s.Interpolation == model.InterpolationMonotone)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: s.Stroke}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Stroke}),
	}
	if s.Geometry == model.GeometryArea {
		seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{
			Color:   s.Fill,
			Opacity: opts.Float(float32(s.FillOpacity)),
		}))
	}

	line := charts.NewLine()
	line.SetXAxis(names(data)).AddSeries(s.Name, items, seriesOpts...)
	return line
}
