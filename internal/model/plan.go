package model

// AxisRole names what an axis encodes.
type AxisRole string

const (
	AxisCategory AxisRole = "category"
	AxisNumeric  AxisRole = "numeric"
	AxisAngular  AxisRole = "angular"
	AxisRadial   AxisRole = "radial"
)

// Axis binds a role to a data key of DataPoint.
type Axis struct {
	Role    AxisRole
	DataKey string
}

// Geometry is the mark a series draws.
type Geometry string

const (
	GeometryBar   Geometry = "bar"
	GeometrySlice Geometry = "slice"
	GeometryLine  Geometry = "line"
	GeometryArea  Geometry = "area"
	GeometryRadar Geometry = "radar"
)

// Interpolation controls how line-like series connect their points.
type Interpolation string

const (
	InterpolationLinear   Interpolation = "linear"
	InterpolationMonotone Interpolation = "monotone"
)

// Series describes one set of marks drawn from the dataset.
type Series struct {
	Name          string
	DataKey       string
	NameKey       string
	Geometry      Geometry
	Stroke        string
	Fill          string
	FillOpacity   float64
	Interpolation Interpolation
	// Palette, when set, colors mark i with Palette[i % len(Palette)].
	Palette []string
	// OuterRadius is the slice radius in pixels for radial geometries.
	OuterRadius int
}

// ColorAt returns the fill color of the mark at index i.
func (s Series) ColorAt(i int) string {
	if n := len(s.Palette); n > 0 {
		if i < 0 {
			i = -i
		}
		return s.Palette[i%n]
	}
	if s.Fill != "" {
		return s.Fill
	}
	return s.Stroke
}

// Decorations are the non-data elements of a chart.
type Decorations struct {
	Legend  bool
	Tooltip bool
	Grid    bool
}

// RenderPlan is the encoding resolved for a chart kind.
type RenderPlan struct {
	Kind        ChartKind
	Axes        []Axis
	Series      []Series
	Decorations Decorations
}

// HasAxis reports whether the plan carries an axis with the given role.
func (p RenderPlan) HasAxis(role AxisRole) bool {
	for _, a := range p.Axes {
		if a.Role == role {
			return true
		}
	}
	return false
}

// Polar reports whether the plan is drawn around a center point.
func (p RenderPlan) Polar() bool {
	if len(p.Axes) == 0 {
		return true
	}
	return p.HasAxis(AxisAngular)
}

// Colors returns the fill color of every point of data under series s.
func (s Series) Colors(data []DataPoint) []string {
	out := make([]string, len(data))
	for i := range data {
		out[i] = s.ColorAt(i)
	}
	return out
}
