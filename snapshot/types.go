// Package snapshot defines the immutable value records a live figure is
// frozen into. Nothing here points back into live state.
package snapshot

import (
	"github.com/danielpatrickdp/livefig/binding"
	"github.com/danielpatrickdp/livefig/params"
	"github.com/danielpatrickdp/livefig/sym"
)

// DynamicPlaceholder replaces the text of a dynamically computed info segment.
const DynamicPlaceholder = "<dynamic>"

// #region settings
// Range is a closed interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Settings holds the global display settings of a figure. A nil limit means
// the axis is scaled automatically.
type Settings struct {
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`
	XLim   *Range `json:"x_lim,omitempty"`
	YLim   *Range `json:"y_lim,omitempty"`
	Grid   bool   `json:"grid"`
	Legend bool   `json:"legend"`
}
// #endregion settings

// #region parameter
// Parameter is one entry of the parameter store with every field captured.
type Parameter struct {
	Name string `json:"name"`
	params.Values
}
// #endregion parameter

// #region plot
// PlotKind distinguishes plot constructors.
type PlotKind string

const (
	KindLine       PlotKind = "line"       // y = f(x)
	KindParametric PlotKind = "parametric" // (x(t), y(t))
)

// Style is the rendering metadata of a plot.
type Style struct {
	Label     string  `json:"label"`
	Color     string  `json:"color"`
	LineWidth float64 `json:"line_width"`
	LineStyle string  `json:"line_style"` // "solid" | "dashed" | "dotted"
	Samples   int     `json:"samples"`
	Hidden    bool    `json:"hidden"`
}

// Plot captures one plot. Exprs holds one expression for a line plot and
// two (x, y) for a parametric plot. Params names the parameters the plot
// reads, in binding order.
type Plot struct {
	Kind    PlotKind     `json:"kind"`
	Exprs   []sym.Expr   `json:"-"`
	Binding binding.Spec `json:"binding"`
	Params  []string     `json:"params"`
	Style   Style        `json:"style"`
	Domain  Range        `json:"domain"`
}
// #endregion plot

// #region info
// Segment is one piece of an info card. A dynamic segment's Text is always
// DynamicPlaceholder; frozen dynamic content is recorded as a static segment.
type Segment struct {
	Dynamic bool   `json:"dynamic"`
	Text    string `json:"text"`
}

// InfoCard is an ordered list of text segments.
type InfoCard struct {
	Segments []Segment `json:"segments"`
}
// #endregion info

// #region figure
// Figure is the complete frozen state of a live figure.
type Figure struct {
	Settings Settings    `json:"settings"`
	Params   []Parameter `json:"params"`
	Plots    []Plot      `json:"plots"`
	Infos    []InfoCard  `json:"infos"`
}
// #endregion figure
