package figure

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/livefig/binding"
	"github.com/danielpatrickdp/livefig/snapshot"
	"github.com/danielpatrickdp/livefig/sym"
)

// #region defaults
const (
	DefaultLineWidth = 1.5
	DefaultLineStyle = "solid"
	DefaultSamples   = 200
	DefaultDomainMin = -10.0
	DefaultDomainMax = 10.0
)

// LineStyles lists the accepted line styles.
var LineStyles = []string{"solid", "dashed", "dotted"}

// palette is cycled by plot index when no color is given.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// #endregion defaults

// #region plot
// Plot is a live plot owned by a figure.
type Plot struct {
	id      uuid.UUID
	fig     *Figure
	kind    snapshot.PlotKind
	exprs   []sym.Expr
	binding binding.Spec
	attrs   plotAttrs
}

// ID is the handle of the plot within its figure. It is not part of snapshots.
func (p *Plot) ID() uuid.UUID { return p.id }

func (p *Plot) Kind() snapshot.PlotKind { return p.kind }

// Exprs returns the plotted expressions.
func (p *Plot) Exprs() []sym.Expr { return append([]sym.Expr(nil), p.exprs...) }

// Binding returns the normalized variable binding.
func (p *Plot) Binding() binding.Spec { return p.binding }

func (p *Plot) Style() snapshot.Style   { return p.attrs.style }
func (p *Plot) Domain() snapshot.Range { return p.attrs.domain }

// Variable is the name of the positional variable the plot is sampled over.
func (p *Plot) Variable() string { return p.binding.Positional()[0] }

// Params names the parameters the plot reads.
func (p *Plot) Params() []string {
	kw := p.binding.Keywords()
	out := make([]string, len(kw))
	for i, k := range kw {
		out[i] = k.Name
	}
	return out
}

// Update changes style or domain. An invalid result leaves the plot as it was.
func (p *Plot) Update(opts ...PlotOption) error {
	next := p.attrs
	for _, opt := range opts {
		opt(&next)
	}
	if err := validateAttrs(next); err != nil {
		return err
	}
	p.attrs = next
	return nil
}

// Snapshot copies the plot's state. It panics when a bound parameter no
// longer exists in the owning figure.
func (p *Plot) Snapshot() snapshot.Plot {
	names := p.Params()
	if p.fig != nil {
		for _, name := range names {
			if !p.fig.store.Has(name) {
				panic(fmt.Sprintf("figure: plot %s references missing parameter %q", p.id, name))
			}
		}
	}
	return snapshot.Plot{
		Kind:    p.kind,
		Exprs:   p.Exprs(),
		Binding: p.binding,
		Params:  names,
		Style:   p.attrs.style,
		Domain:  p.attrs.domain,
	}
}

// Eval evaluates the plot at positional value t using the current
// parameter values. A parametric plot returns (x(t), y(t)); a line plot
// returns (t, f(t)).
func (p *Plot) Eval(t float64) (float64, float64, error) {
	env := sym.Env{}
	if p.fig != nil {
		env = p.fig.values()
	}
	env[p.Variable()] = t
	if p.kind == snapshot.KindParametric {
		x, err := sym.Eval(p.exprs[0], env)
		if err != nil {
			return 0, 0, err
		}
		y, err := sym.Eval(p.exprs[1], env)
		return x, y, err
	}
	y, err := sym.Eval(p.exprs[0], env)
	return t, y, err
}

func validateAttrs(a plotAttrs) error {
	s := a.style
	if !(s.LineWidth > 0) || math.IsInf(s.LineWidth, 0) {
		return fmt.Errorf("line width %g: %w", s.LineWidth, ErrStyle)
	}
	if s.Samples < 2 {
		return fmt.Errorf("samples %d: %w", s.Samples, ErrStyle)
	}
	known := false
	for _, ls := range LineStyles {
		known = known || ls == s.LineStyle
	}
	if !known {
		return fmt.Errorf("line style %q: %w", s.LineStyle, ErrStyle)
	}
	d := a.domain
	if math.IsNaN(d.Min) || math.IsNaN(d.Max) || math.IsInf(d.Min, 0) || math.IsInf(d.Max, 0) || d.Min >= d.Max {
		return fmt.Errorf("domain [%g, %g]: %w", d.Min, d.Max, ErrStyle)
	}
	return nil
}

// #endregion plot
