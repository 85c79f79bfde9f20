package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ChartKind identifies a visualization shape offered by the dashboard.
type ChartKind string

const (
	ChartBar      ChartKind = "bar"
	ChartPie      ChartKind = "pie"
	ChartLine     ChartKind = "line"
	ChartArea     ChartKind = "area"
	ChartRadar    ChartKind = "radar"
	ChartComposed ChartKind = "composed"
)

// DefaultChartKind is selected when the dashboard starts.
const DefaultChartKind = ChartBar

// ChartKinds lists the closed set of kinds with a dedicated encoding.
func ChartKinds() []ChartKind {
	return []ChartKind{ChartBar, ChartPie, ChartLine, ChartArea, ChartRadar, ChartComposed}
}

// Label returns the selector text for the kind: "bar" becomes "Bar Chart".
func (k ChartKind) Label() string {
	s := string(k)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return strings.TrimSpace(s + " Chart")
	}
	return string(unicode.ToUpper(r)) + s[size:] + " Chart"
}

// ChartCatalogEntry is one chart kind offered by the remote catalog.
type ChartCatalogEntry struct {
	Type ChartKind `json:"type"`
}
