// Package encoding maps a chart kind to the plan a renderer needs to draw it.
package encoding

import "dashboard/internal/model"

const (
	ColorPrimary = "#8884d8"
	ColorAccent  = "#ff7300"

	valueKey = "value"
	nameKey  = "name"

	areaOpacity  = 0.6
	radarOpacity = 0.6
	pieRadius    = 150
)

// piePalette colors pie slices by position modulo its length.
var piePalette = [...]string{"#8884d8", "#82ca9d", "#ffc658", "#ff8042", "#8dd1e1"}

// PiePalette returns a copy of the slice palette.
func PiePalette() []string {
	return append([]string(nil), piePalette[:]...)
}

var plans = map[model.ChartKind]func() model.RenderPlan{
	model.ChartBar:      barPlan,
	model.ChartPie:      piePlan,
	model.ChartLine:     linePlan,
	model.ChartArea:     areaPlan,
	model.ChartRadar:    radarPlan,
	model.ChartComposed: composedPlan,
}

// Resolve returns a fresh plan for kind. Unknown kinds get the composed plan.
func Resolve(kind model.ChartKind) model.RenderPlan {
	build, ok := plans[kind]
	if !ok {
		build = composedPlan
	}
	return build()
}

// Known reports whether kind has a dedicated plan.
func Known(kind model.ChartKind) bool {
	_, ok := plans[kind]
	return ok
}

func cartesianAxes() []model.Axis {
	return []model.Axis{
		{Role: model.AxisCategory, DataKey: nameKey},
		{Role: model.AxisNumeric, DataKey: valueKey},
	}
}

func cartesianDecorations() model.Decorations {
	return model.Decorations{Legend: true, Tooltip: true}
}

func barPlan() model.RenderPlan {
	return model.RenderPlan{
		Kind: model.ChartBar,
		Axes: cartesianAxes(),
		Series: []model.Series{{
			Name:     valueKey,
			DataKey:  valueKey,
			Geometry: model.GeometryBar,
			Fill:     ColorPrimary,
		}},
		Decorations: cartesianDecorations(),
	}
}

func piePlan() model.RenderPlan {
	return model.RenderPlan{
		Kind: model.ChartPie,
		Series: []model.Series{{
			Name:        valueKey,
			DataKey:     valueKey,
			NameKey:     nameKey,
			Geometry:    model.GeometrySlice,
			Fill:        ColorPrimary,
			Palette:     PiePalette(),
			OuterRadius: pieRadius,
		}},
		Decorations: model.Decorations{Legend: true, Tooltip: true},
	}
}

func linePlan() model.RenderPlan {
	return model.RenderPlan{
		Kind: model.ChartLine,
		Axes: cartesianAxes(),
		Series: []model.Series{{
			Name:          valueKey,
			DataKey:       valueKey,
			Geometry:      model.GeometryLine,
			Stroke:        ColorPrimary,
			Interpolation: model.InterpolationMonotone,
		}},
		Decorations: cartesianDecorations(),
	}
}

func areaPlan() model.RenderPlan {
	return model.RenderPlan{
		Kind: model.ChartArea,
		Axes: cartesianAxes(),
		Series: []model.Series{{
			Name:          valueKey,
			DataKey:       valueKey,
			Geometry:      model.GeometryArea,
			Stroke:        ColorPrimary,
			Fill:          ColorPrimary,
			FillOpacity:   areaOpacity,
			Interpolation: model.InterpolationMonotone,
		}},
		Decorations: cartesianDecorations(),
	}
}

func radarPlan() model.RenderPlan {
	return model.RenderPlan{
		Kind: model.ChartRadar,
		Axes: []model.Axis{
			{Role: model.AxisAngular, DataKey: nameKey},
			{Role: model.AxisRadial, DataKey: valueKey},
		},
		Series: []model.Series{{
			Name:        "Users",
			DataKey:     valueKey,
			Geometry:    model.GeometryRadar,
			Stroke:      ColorPrimary,
			Fill:        ColorPrimary,
			FillOpacity: radarOpacity,
		}},
		// no tooltip on the radar view
		Decorations: model.Decorations{Legend: true, Grid: true},
	}
}

func composedPlan() model.RenderPlan {
	return model.RenderPlan{
		Kind: model.ChartComposed,
		Axes: cartesianAxes(),
		Series: []model.Series{
			{
				Name:     valueKey,
				DataKey:  valueKey,
				Geometry: model.GeometryBar,
				Fill:     ColorPrimary,
			},
			{
				Name:          valueKey,
				DataKey:       valueKey,
				Geometry:      model.GeometryLine,
				Stroke:        ColorAccent,
				Interpolation: model.InterpolationMonotone,
			},
		},
		Decorations: cartesianDecorations(),
	}
}
