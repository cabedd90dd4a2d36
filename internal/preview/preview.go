// Package preview rasterizes a figure snapshot to PNG with the gg software
// renderer. It samples every visible plot at the snapshot's parameter values.
package preview

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gogpu/gg"

	"github.com/danielpatrickdp/livefig/internal/logging"
	"github.com/danielpatrickdp/livefig/snapshot"
	"github.com/danielpatrickdp/livefig/sym"
)

const margin = 24.0

// #region options
type config struct {
	width, height int
	background    gg.RGBA
}

// Option configures Render.
type Option func(*config)

// WithSize overrides the snapshot's figure size.
func WithSize(width, height int) Option {
	return func(c *config) { c.width, c.height = width, height }
}

// WithBackground sets the canvas color, as a hex string.
func WithBackground(hex string) Option {
	return func(c *config) { c.background = gg.Hex(hex) }
}
// #endregion options

// #region sample
// Point is one sampled location. Points that failed to evaluate or were not
// finite are dropped and split the series into runs.
type Point struct{ X, Y float64 }

// Series holds the sampled runs of one plot.
type Series struct {
	Label string
	Style snapshot.Style
	Runs  [][]Point
}

// Bounds is the data-space window mapped onto the canvas.
type Bounds struct {
	X, Y snapshot.Range
}

// Sample evaluates every visible plot of s and computes the viewing window.
// Axis limits in the settings win over the sampled extent.
func Sample(s snapshot.Figure) ([]Series, Bounds) {
	env := s.ParamValues()
	var out []Series
	ext := extent{}
	for _, pl := range s.Plots {
		pos := pl.Binding.Positional()
		if pl.Style.Hidden || len(pos) == 0 || pl.Style.Samples < 2 {
			continue
		}
		series := Series{Label: pl.Style.Label, Style: pl.Style}
		variable := pos[0]
		var run []Point
		n := pl.Style.Samples
		for i := 0; i < n; i++ {
			t := pl.Domain.Min + (pl.Domain.Max-pl.Domain.Min)*float64(i)/float64(n-1)
			p, ok := evalAt(pl, env, variable, t)
			if !ok {
				if len(run) > 0 {
					series.Runs = append(series.Runs, run)
					run = nil
				}
				continue
			}
			ext.add(p)
			run = append(run, p)
		}
		if len(run) > 0 {
			series.Runs = append(series.Runs, run)
		}
		out = append(out, series)
	}

	b := Bounds{X: ext.x.orDefault(), Y: ext.y.orDefault()}
	if s.Settings.XLim != nil {
		b.X = *s.Settings.XLim
	}
	if s.Settings.YLim != nil {
		b.Y = *s.Settings.YLim
	}
	return out, b
}

func evalAt(pl snapshot.Plot, env sym.Env, variable string, t float64) (Point, bool) {
	local := make(sym.Env, len(env)+1)
	for k, v := range env {
		local[k] = v
	}
	local[variable] = t
	var p Point
	if pl.Kind == snapshot.KindParametric {
		x, err := sym.Eval(pl.Exprs[0], local)
		if err != nil {
			return Point{}, false
		}
		y, err := sym.Eval(pl.Exprs[1], local)
		if err != nil {
			return Point{}, false
		}
		p = Point{x, y}
	} else {
		y, err := sym.Eval(pl.Exprs[0], local)
		if err != nil {
			return Point{}, false
		}
		p = Point{t, y}
	}
	if !finite(p.X) || !finite(p.Y) {
		return Point{}, false
	}
	return p, true
}

type span struct {
	min, max float64
	set      bool
}

func (s *span) add(v float64) {
	if !s.set {
		s.min, s.max, s.set = v, v, true
		return
	}
	s.min, s.max = math.Min(s.min, v), math.Max(s.max, v)
}

// orDefault pads a degenerate span and falls back to [-1, 1] when empty.
func (s span) orDefault() snapshot.Range {
	switch {
	case !s.set:
		return snapshot.Range{Min: -1, Max: 1}
	case s.min == s.max:
		return snapshot.Range{Min: s.min - 1, Max: s.max + 1}
	}
	return snapshot.Range{Min: s.min, Max: s.max}
}

type extent struct{ x, y span }

func (e *extent) add(p Point) {
	e.x.add(p.X)
	e.y.add(p.Y)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
// #endregion sample

// #region render
// Render draws s and writes it to w as PNG.
func Render(s snapshot.Figure, w io.Writer, opts ...Option) error {
	cfg := config{width: s.Settings.Width, height: s.Settings.Height, background: gg.White}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.width <= 0 || cfg.height <= 0 {
		return fmt.Errorf("preview: invalid size %dx%d", cfg.width, cfg.height)
	}

	series, b := Sample(s)
	dc := gg.NewContext(cfg.width, cfg.height)
	defer dc.Close()
	dc.ClearWithColor(cfg.background)

	tr := transform{b: b, w: float64(cfg.width), h: float64(cfg.height)}
	if s.Settings.Grid {
		drawGrid(dc, tr)
	}
	drawAxes(dc, tr)

	for _, sr := range series {
		dc.SetColor(parseColor(sr.Style.Color).Color())
		dc.SetLineWidth(sr.Style.LineWidth)
		switch sr.Style.LineStyle {
		case "dashed":
			dc.SetDash(6, 4)
		case "dotted":
			dc.SetDash(1.5, 3)
		default:
			dc.ClearDash()
		}
		for _, run := range sr.Runs {
			for i, p := range run {
				x, y := tr.apply(p)
				if i == 0 {
					dc.MoveTo(x, y)
					continue
				}
				dc.LineTo(x, y)
			}
			if len(run) == 1 {
				x, y := tr.apply(run[0])
				dc.DrawPoint(x, y, sr.Style.LineWidth)
				if err := dc.Fill(); err != nil {
					return fmt.Errorf("preview: %w", err)
				}
				continue
			}
			if err := dc.Stroke(); err != nil {
				return fmt.Errorf("preview: %w", err)
			}
		}
	}
	dc.ClearDash()

	logging.Logger().Debug("preview rendered", "width", cfg.width, "height", cfg.height, "series", len(series))
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("preview encode: %w", err)
	}
	return nil
}

type transform struct {
	b    Bounds
	w, h float64
}

func (t transform) apply(p Point) (float64, float64) {
	x := margin + (p.X-t.b.X.Min)/(t.b.X.Max-t.b.X.Min)*(t.w-2*margin)
	y := t.h - margin - (p.Y-t.b.Y.Min)/(t.b.Y.Max-t.b.Y.Min)*(t.h-2*margin)
	return x, y
}

func drawGrid(dc *gg.Context, tr transform) {
	dc.SetRGB(0.9, 0.9, 0.9)
	dc.SetLineWidth(1)
	const n = 10
	for i := 0; i <= n; i++ {
		fx := margin + float64(i)*(tr.w-2*margin)/n
		fy := margin + float64(i)*(tr.h-2*margin)/n
		dc.DrawLine(fx, margin, fx, tr.h-margin)
		dc.DrawLine(margin, fy, tr.w-margin, fy)
	}
	dc.Stroke()
}

func drawAxes(dc *gg.Context, tr transform) {
	dc.SetRGB(0.3, 0.3, 0.3)
	dc.SetLineWidth(1)
	if tr.b.Y.Min <= 0 && tr.b.Y.Max >= 0 {
		x0, y0 := tr.apply(Point{tr.b.X.Min, 0})
		x1, _ := tr.apply(Point{tr.b.X.Max, 0})
		dc.DrawLine(x0, y0, x1, y0)
	}
	if tr.b.X.Min <= 0 && tr.b.X.Max >= 0 {
		x0, y0 := tr.apply(Point{0, tr.b.Y.Min})
		_, y1 := tr.apply(Point{0, tr.b.Y.Max})
		dc.DrawLine(x0, y0, x0, y1)
	}
	dc.Stroke()
}

var named = map[string]gg.RGBA{
	"black": gg.Black,
	"white": gg.White,
	"red":   gg.Hex("#d62728"),
	"green": gg.Hex("#2ca02c"),
	"blue":  gg.Hex("#1f77b4"),
}

// parseColor accepts hex strings and a few names. Anything else draws black.
func parseColor(s string) gg.RGBA {
	s = strings.TrimSpace(strings.ToLower(s))
	if strings.HasPrefix(s, "#") {
		return gg.Hex(s)
	}
	if c, ok := named[s]; ok {
		return c
	}
	return gg.Black
}
// #endregion render
