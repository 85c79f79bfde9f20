package service

import (
	"errors"
	"io"
	"math"
	"strings"

	"dashboard/internal/model"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Renderer draws a dataset with a plan. Implementations must not modify
// either argument and must accept an empty dataset.
type Renderer interface {
	Render(w io.Writer, data []model.DataPoint, plan model.RenderPlan) error
}

// ImageFormat selects the go-chart output.
type ImageFormat string

const (
	FormatPNG ImageFormat = "png"
	FormatSVG ImageFormat = "svg"
)

const (
	defaultWidth  = 800
	defaultHeight = 400

	monotoneSteps = 12
	barSlotRatio  = 0.7
	gridRings     = 5
)

var (
	colorFrame = drawing.ColorFromHex("cccccc")
	colorText  = drawing.ColorFromHex("333333")
)

// ChartRenderer renders plans to PNG or SVG with go-chart.
type ChartRenderer struct {
	Width  int
	Height int
	Format ImageFormat
	Title  string
}

func NewChartRenderer(width, height int, format ImageFormat) *ChartRenderer {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	if format == "" {
		format = FormatPNG
	}
	return &ChartRenderer{Width: width, Height: height, Format: format}
}

func (c *ChartRenderer) provider() chart.RendererProvider {
	if c.Format == FormatSVG {
		return chart.SVG
	}
	return chart.PNG
}

// Render implements Renderer.
func (c *ChartRenderer) Render(w io.Writer, data []model.DataPoint, plan model.RenderPlan) error {
	if len(plan.Series) == 0 {
		return errors.New("render plan has no series")
	}
	if len(data) == 0 {
		return c.renderEmpty(w, plan)
	}

	first := plan.Series[0]
	switch {
	case first.Geometry == model.GeometrySlice:
		return c.renderPie(w, data, plan)
	case first.Geometry == model.GeometryRadar:
		return c.renderRadar(w, data, plan)
	case len(plan.Series) == 1 && first.Geometry == model.GeometryBar:
		return c.renderBar(w, data, plan)
	default:
		return c.renderCartesian(w, data, plan)
	}
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func withOpacity(c drawing.Color, opacity float64) drawing.Color {
	if opacity <= 0 || opacity >= 1 {
		return c
	}
	return c.WithAlpha(uint8(math.Round(opacity * 255)))
}

func values(data []model.DataPoint) []float64 {
	out := make([]float64, len(data))
	for i, p := range data {
		out[i] = p.Value
	}
	return out
}

// valueRange spans zero and every value so the range is never degenerate.
func valueRange(data []model.DataPoint) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, p := range data {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	if hi == lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + (hi-lo)*0.05}
}

func (c *ChartRenderer) background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10}}
}

func (c *ChartRenderer) renderBar(w io.Writer, data []model.DataPoint, plan model.RenderPlan) error {
	s := plan.Series[0]
	bars := make([]chart.Value, len(data))
	for i, p := range data {
		fill := hexColor(s.ColorAt(i))
		bars[i] = chart.Value{
			Label: p.Name,
			Value: p.Value,
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		}
	}

	graph := chart.BarChart{
		Title:      c.Title,
		Width:      c.Width,
		Height:     c.Height,
		Background: c.background(),
		BarWidth:   barWidth(c.Width, len(data)),
		YAxis:      chart.YAxis{Range: valueRange(data)},
		Bars:       bars,
	}
	return graph.Render(c.provider(), w)
}

func barWidth(width, n int) int {
	bw := int(float64(width) * barSlotRatio / float64(n+1))
	if bw < 4 {
		bw = 4
	}
	if bw > 80 {
		bw = 80
	}
	return bw
}

func (c *ChartRenderer) renderPie(w io.Writer, data []model.DataPoint, plan model.RenderPlan) error {
	s := plan.Series[0]
	total := 0.0
	slices := make([]chart.Value, 0, len(data))
	for i, p := range data {
		if p.Value <= 0 {
			continue
		}
		total += p.Value
		fill := hexColor(s.ColorAt(i))
		slices = append(slices, chart.Value{
			Label: p.Name,
			Value: p.Value,
			Style: chart.Style{FillColor: fill, StrokeColor: drawing.ColorWhite},
		})
	}
	if total == 0 {
		return c.renderEmpty(w, plan)
	}

	size := c.Height
	if r := s.OuterRadius; r > 0 && 2*r+80 < size {
		size = 2*r + 80
	}
	graph := chart.PieChart{
		Title:  c.Title,
		Width:  c.Width,
		Height: size,
		Values: slices,
	}
	return graph.Render(c.provider(), w)
}

func (c *ChartRenderer) renderCartesian(w io.Writer, data []model.DataPoint, plan model.RenderPlan) error {
	n := len(data)
	ys := values(data)

	// The padding ticks keep the x range non-degenerate for a single point.
	ticks := make([]chart.Tick, 0, n+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i, p := range data {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: p.Name})
	}
	ticks = append(ticks, chart.Tick{Value: float64(n) - 0.5})

	graph := chart.Chart{
		Title:      c.Title,
		Width:      c.Width,
		Height:     c.Height,
		Background: c.background(),
		XAxis:      chart.XAxis{Ticks: ticks, Range: &chart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5}},
		YAxis:      chart.YAxis{Range: valueRange(data)},
	}

	for _, s := range plan.Series {
		switch s.Geometry {
		case model.GeometryBar:
			colors := make([]drawing.Color, n)
			for i := range colors {
				colors[i] = hexColor(s.ColorAt(i))
			}
			graph.Series = append(graph.Series, barSeries{
				name:   s.Name,
				values: ys,
				colors: colors,
				style:  chart.Style{StrokeColor: hexColor(s.ColorAt(0)), FillColor: hexColor(s.ColorAt(0))},
			})
		default:
			xs, sy := linearSample(ys)
			if s.Interpolation == model.InterpolationMonotone {
				xs, sy = monotoneSample(ys, monotoneSteps)
			}
			style := chart.Style{StrokeColor: hexColor(s.Stroke), StrokeWidth: 2}
			if s.Geometry == model.GeometryArea {
				style.FillColor = withOpacity(hexColor(s.Fill), s.FillOpacity)
			}
			graph.Series = append(graph.Series, chart.ContinuousSeries{
				Name:    s.Name,
				XValues: xs,
				YValues: sy,
				Style:   style,
			})
		}
	}

	if plan.Decorations.Legend {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}
	return graph.Render(c.provider(), w)
}

// barSeries draws one bar per category inside a chart.Chart, which lets a
// bar series share axes with line series.
type barSeries struct {
	name   string
	values []float64
	colors []drawing.Color
	style  chart.Style
}

func (b barSeries) GetName() string { return b.name }
func (b barSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (b barSeries) GetStyle() chart.Style { return b.style }
func (b barSeries) Len() int { return len(b.values) }
func (b barSeries) GetValues(i int) (float64, float64) { return float64(i), b.values[i] }

func (b barSeries) Validate() error {
	if len(b.values) == 0 {
		return errors.New("bar series has no values")
	}
	return nil
}

func (b barSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	slot := xrange.Translate(1) - xrange.Translate(0)
	half := int(float64(slot) * barSlotRatio / 2)
	if half < 1 {
		half = 1
	}
	base := math.Max(yrange.GetMin(), math.Min(0, yrange.GetMax()))
	bottom := canvasBox.Bottom - yrange.Translate(base)

	for i, v := range b.values {
		x := canvasBox.Left + xrange.Translate(float64(i))
		top := canvasBox.Bottom - yrange.Translate(v)
		y0, y1 := top, bottom
		if y0 > y1 {
			y0, y1 = y1, y0
		}
		r.SetFillColor(b.colors[i])
		r.SetStrokeColor(b.colors[i])
		r.SetStrokeWidth(1)
		r.MoveTo(x-half, y0)
		r.LineTo(x+half, y0)
		r.LineTo(x+half, y1)
		r.LineTo(x-half, y1)
		r.LineTo(x-half, y0)
		r.Close()
		r.FillStroke()
	}
}

func linearSample(ys []float64) ([]float64, []float64) {
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs, append([]float64(nil), ys...)
}

// monotoneSample interpolates ys (spaced one unit apart) with a monotone
// cubic Hermite spline, so the curve never overshoots between points.
func monotoneSample(ys []float64, steps int) ([]float64, []float64) {
	n := len(ys)
	if n < 3 || steps < 2 {
		return linearSample(ys)
	}

	d := make([]float64, n-1)
	for i := range d {
		d[i] = ys[i+1] - ys[i]
	}
	m := make([]float64, n)
	m[0], m[n-1] = d[0], d[n-2]
	for i := 1; i < n-1; i++ {
		if d[i-1]*d[i] <= 0 {
			continue
		}
		m[i] = (d[i-1] + d[i]) / 2
	}
	for i, di := range d {
		if di == 0 {
			m[i], m[i+1] = 0, 0
			continue
		}
		a, b := m[i]/di, m[i+1]/di
		if s := a*a + b*b; s > 9 {
			t := 3 / math.Sqrt(s)
			m[i], m[i+1] = t*a*di, t*b*di
		}
	}

	xs := make([]float64, 0, (n-1)*steps+1)
	out := make([]float64, 0, cap(xs))
	for i := 0; i < n-1; i++ {
		for k := 0; k < steps; k++ {
			t := float64(k) / float64(steps)
			t2, t3 := t*t, t*t*t
			y := (2*t3-3*t2+1)*ys[i] + (t3-2*t2+t)*m[i] + (-2*t3+3*t2)*ys[i+1] + (t3-t2)*m[i+1]
			xs = append(xs, float64(i)+t)
			out = append(out, y)
		}
	}
	xs = append(xs, float64(n-1))
	out = append(out, ys[n-1])
	return xs, out
}

func (c *ChartRenderer) canvas() (chart.Renderer, error) {
	r, err := c.provider()(c.Width, c.Height)
	if err != nil {
		return nil, err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}
	r.SetFont(font)

	r.SetFillColor(drawing.ColorWhite)
	r.SetStrokeColor(drawing.ColorWhite)
	r.MoveTo(0, 0)
	r.LineTo(c.Width, 0)
	r.LineTo(c.Width, c.Height)
	r.LineTo(0, c.Height)
	r.LineTo(0, 0)
	r.Close()
	r.FillStroke()
	return r, nil
}

func (c *ChartRenderer) drawTitle(r chart.Renderer) {
	if c.Title == "" {
		return
	}
	r.SetFontColor(colorText)
	r.SetFontSize(14)
	box := r.MeasureText(c.Title)
	r.Text(c.Title, (c.Width-box.Width())/2, 24)
}

func (c *ChartRenderer) drawLegend(r chart.Renderer, plan model.RenderPlan) {
	if !plan.Decorations.Legend {
		return
	}
	r.SetFontSize(10)
	r.SetFontColor(colorText)
	x := c.Width / 2
	y := c.Height - 12
	for i, s := range plan.Series {
		col := hexColor(s.ColorAt(0))
		r.SetFillColor(col)
		r.SetStrokeColor(col)
		lx := x + i*80 - len(plan.Series)*40
		r.MoveTo(lx, y-8)
		r.LineTo(lx+10, y-8)
		r.LineTo(lx+10, y+2)
		r.LineTo(lx, y+2)
		r.LineTo(lx, y-8)
		r.Close()
		r.FillStroke()
		r.Text(s.Name, lx+14, y+2)
	}
}

// renderEmpty draws the frame of the plan without marks.
func (c *ChartRenderer) renderEmpty(w io.Writer, plan model.RenderPlan) error {
	r, err := c.canvas()
	if err != nil {
		return err
	}
	c.drawTitle(r)

	r.SetStrokeColor(colorFrame)
	r.SetStrokeWidth(1)
	if plan.Polar() {
		cx, cy := c.Width/2, c.Height/2
		radius := float64(c.radarRadius())
		r.Circle(radius, cx, cy)
		r.Stroke()
	} else {
		left, bottom := 50, c.Height-40
		r.MoveTo(left, 40)
		r.LineTo(left, bottom)
		r.LineTo(c.Width-20, bottom)
		r.Stroke()
	}

	c.drawLegend(r, plan)
	return r.Save(w)
}

func (c *ChartRenderer) radarRadius() int {
	size := c.Width
	if c.Height < size {
		size = c.Height
	}
	radius := size/2 - 60
	if radius < 10 {
		radius = 10
	}
	return radius
}

func (c *ChartRenderer) renderRadar(w io.Writer, data []model.DataPoint, plan model.RenderPlan) error {
	r, err := c.canvas()
	if err != nil {
		return err
	}
	c.drawTitle(r)

	s := plan.Series[0]
	n := len(data)
	cx, cy := c.Width/2, c.Height/2
	radius := float64(c.radarRadius())

	maxValue := 0.0
	for _, p := range data {
		maxValue = math.Max(maxValue, p.Value)
	}
	if maxValue == 0 {
		maxValue = 1
	}

	point := func(i int, frac float64) (int, int) {
		angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		return cx + int(math.Round(frac*radius*math.Cos(angle))),
			cy + int(math.Round(frac*radius*math.Sin(angle)))
	}

	if plan.Decorations.Grid {
		r.SetStrokeColor(colorFrame)
		r.SetStrokeWidth(1)
		for ring := 1; ring <= gridRings; ring++ {
			frac := float64(ring) / gridRings
			x0, y0 := point(0, frac)
			r.MoveTo(x0, y0)
			for i := 1; i <= n; i++ {
				x, y := point(i%n, frac)
				r.LineTo(x, y)
			}
			r.Stroke()
		}
		for i := 0; i < n; i++ {
			x, y := point(i, 1)
			r.MoveTo(cx, cy)
			r.LineTo(x, y)
			r.Stroke()
		}
	}

	stroke := hexColor(s.Stroke)
	r.SetStrokeColor(stroke)
	r.SetFillColor(withOpacity(hexColor(s.Fill), s.FillOpacity))
	r.SetStrokeWidth(2)
	for i, p := range data {
		x, y := point(i, math.Max(p.Value, 0)/maxValue)
		if i == 0 {
			r.MoveTo(x, y)
			continue
		}
		r.LineTo(x, y)
	}
	x0, y0 := point(0, math.Max(data[0].Value, 0)/maxValue)
	r.LineTo(x0, y0)
	r.Close()
	r.FillStroke()

	r.SetFontColor(colorText)
	r.SetFontSize(10)
	for i, p := range data {
		x, y := point(i, 1.12)
		box := r.MeasureText(p.Name)
		r.Text(p.Name, x-box.Width()/2, y+box.Height()/2)
	}

	c.drawLegend(r, plan)
	return r.Save(w)
}
