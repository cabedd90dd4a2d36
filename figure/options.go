package figure

import (
	"log/slog"

	"github.com/danielpatrickdp/livefig/snapshot"
)

// #region figure-options
// Option configures a figure's global settings.
type Option func(*Figure)

func WithTitle(s string) Option { return func(f *Figure) { f.settings.Title = s } }

// WithSize sets the canvas size in pixels.
func WithSize(width, height int) Option {
	return func(f *Figure) { f.settings.Width, f.settings.Height = width, height }
}

// WithLabels sets the axis labels.
func WithLabels(x, y string) Option {
	return func(f *Figure) { f.settings.XLabel, f.settings.YLabel = x, y }
}

// WithXLim fixes the x axis range. Without it the axis scales to the data.
func WithXLim(min, max float64) Option {
	return func(f *Figure) { f.settings.XLim = &snapshot.Range{Min: min, Max: max} }
}

func WithYLim(min, max float64) Option {
	return func(f *Figure) { f.settings.YLim = &snapshot.Range{Min: min, Max: max} }
}

// AutoScale clears both axis limits.
func AutoScale() Option {
	return func(f *Figure) { f.settings.XLim, f.settings.YLim = nil, nil }
}

func WithGrid(on bool) Option   { return func(f *Figure) { f.settings.Grid = on } }
func WithLegend(on bool) Option { return func(f *Figure) { f.settings.Legend = on } }

// WithDynamicPolicy selects how computed info segments are snapshotted.
func WithDynamicPolicy(p DynamicPolicy) Option { return func(f *Figure) { f.policy = p } }

// WithLogger overrides the package logger for this figure.
func WithLogger(l *slog.Logger) Option { return func(f *Figure) { f.logger = l } }

// #endregion figure-options

// #region plot-options
// PlotOption configures a plot's style or domain.
type PlotOption func(*plotAttrs)

type plotAttrs struct {
	style  snapshot.Style
	domain snapshot.Range
}

func Label(s string) PlotOption       { return func(a *plotAttrs) { a.style.Label = s } }
func Color(s string) PlotOption       { return func(a *plotAttrs) { a.style.Color = s } }
func LineWidth(w float64) PlotOption  { return func(a *plotAttrs) { a.style.LineWidth = w } }
func LineStyle(s string) PlotOption   { return func(a *plotAttrs) { a.style.LineStyle = s } }
func Samples(n int) PlotOption        { return func(a *plotAttrs) { a.style.Samples = n } }
func Hidden(hidden bool) PlotOption   { return func(a *plotAttrs) { a.style.Hidden = hidden } }

// Domain sets the sampled range of the plot's positional variable.
func Domain(min, max float64) PlotOption {
	return func(a *plotAttrs) { a.domain = snapshot.Range{Min: min, Max: max} }
}

// #endregion plot-options
