// Package figure is the live, mutable side of livefig: a figure owns a
// parameter store, plots and info cards, and freezes them into
// snapshot.Figure values on request.
//
// A Figure has no internal locking. Callers serialize mutations and must not
// mutate while a snapshot is being taken.
package figure

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tiendc/go-deepcopy"

	"github.com/danielpatrickdp/livefig/binding"
	"github.com/danielpatrickdp/livefig/internal/codegen"
	"github.com/danielpatrickdp/livefig/internal/logging"
	"github.com/danielpatrickdp/livefig/params"
	"github.com/danielpatrickdp/livefig/snapshot"
	"github.com/danielpatrickdp/livefig/sym"
)

// #region figure
// Figure is an interactive figure.
type Figure struct {
	settings snapshot.Settings
	store    *params.Store
	plots    []*Plot
	infos    []*InfoCard
	policy   DynamicPolicy
	logger   *slog.Logger
}

// DefaultSettings returns the settings of a figure built with no options.
func DefaultSettings() snapshot.Settings {
	return snapshot.Settings{Width: 640, Height: 480, Legend: true}
}

// New creates an empty figure.
func New(opts ...Option) *Figure {
	f := &Figure{settings: DefaultSettings(), policy: DynamicPlaceholder}
	f.store = params.NewStore(params.WithInUse(f.bound))
	for _, opt := range opts {
		opt(f)
	}
	f.store.OnChange(func(c params.Change) {
		f.log().Debug("parameter change", "name", c.Name, "created", c.Created, "removed", c.Removed,
			"value", c.New.Value, "min", c.New.Min, "max", c.New.Max, "step", c.New.Step)
	})
	return f
}

// Update applies settings options to an existing figure.
func (f *Figure) Update(opts ...Option) {
	for _, opt := range opts {
		opt(f)
	}
}

// Settings returns a copy of the global settings.
func (f *Figure) Settings() snapshot.Settings { return copySettings(f.settings) }

// Policy reports how computed info segments are snapshotted.
func (f *Figure) Policy() DynamicPolicy { return f.policy }

func (f *Figure) log() *slog.Logger {
	if f.logger != nil {
		return f.logger
	}
	return logging.Logger()
}

// #endregion figure

// #region parameters
// Parameter declares name or updates the fields supplied in opts.
func (f *Figure) Parameter(name string, opts ...params.Option) (*params.Parameter, error) {
	p, err := f.store.DeclareOrUpdate(name, opts...)
	if err != nil {
		return nil, fmt.Errorf("declare: %w", err)
	}
	return p, nil
}

// Params is the keyed parameter accessor.
func (f *Figure) Params() *params.Store { return f.store }

// Param looks up a declared parameter.
func (f *Figure) Param(name string) (*params.Parameter, bool) { return f.store.Get(name) }

// RemoveParameter deletes name. It is refused while a plot binds it.
func (f *Figure) RemoveParameter(name string) error { return f.store.Remove(name) }

func (f *Figure) bound(name string) bool {
	for _, p := range f.plots {
		if s, ok := p.binding.Lookup(name); ok && s.Keyword {
			return true
		}
	}
	return false
}

func (f *Figure) values() sym.Env {
	env := make(sym.Env, f.store.Len())
	for _, p := range f.store.All() {
		env[p.Name()] = p.Value()
	}
	return env
}

// #endregion parameters

// #region plots
// Plot adds y = e(x) where x is the single positional variable of vars.
// Free symbols of e that vars does not name become parameters.
func (f *Figure) Plot(e sym.Expr, vars binding.Input, opts ...PlotOption) (*Plot, error) {
	return f.addPlot(snapshot.KindLine, []sym.Expr{e}, vars, opts)
}

// Parametric adds the curve (x(t), y(t)) where t is the single positional
// variable of vars.
func (f *Figure) Parametric(x, y sym.Expr, vars binding.Input, opts ...PlotOption) (*Plot, error) {
	return f.addPlot(snapshot.KindParametric, []sym.Expr{x, y}, vars, opts)
}

func (f *Figure) addPlot(kind snapshot.PlotKind, exprs []sym.Expr, vars binding.Input, opts []PlotOption) (*Plot, error) {
	for _, e := range exprs {
		if e == nil {
			return nil, fmt.Errorf("add %s plot: nil expression", kind)
		}
	}
	spec, err := binding.Normalize(vars)
	if err != nil {
		return nil, fmt.Errorf("add %s plot: %w", kind, err)
	}
	if pos := spec.Positional(); len(pos) != 1 {
		return nil, &VariablesError{Kind: string(kind), Want: 1, Got: pos}
	}

	var extra []binding.Named
	seen := make(map[string]bool)
	for _, e := range exprs {
		for _, name := range sym.FreeSymbols(e) {
			if _, ok := spec.Lookup(name); ok || seen[name] {
				continue
			}
			seen[name] = true
			v := params.DefaultValue
			if p, ok := f.store.Get(name); ok {
				v = p.Value()
			}
			extra = append(extra, binding.Named{Name: name, Value: v})
		}
	}
	if len(extra) > 0 {
		if spec, err = spec.WithKeywords(extra...); err != nil {
			return nil, fmt.Errorf("add %s plot: %w", kind, err)
		}
	}

	attrs := plotAttrs{
		style: snapshot.Style{
			Label:     defaultLabel(kind, exprs),
			Color:     palette[len(f.plots)%len(palette)],
			LineWidth: DefaultLineWidth,
			LineStyle: DefaultLineStyle,
			Samples:   DefaultSamples,
		},
		domain: snapshot.Range{Min: DefaultDomainMin, Max: DefaultDomainMax},
	}
	for _, opt := range opts {
		opt(&attrs)
	}
	if err := validateAttrs(attrs); err != nil {
		return nil, err
	}

	// Check every missing parameter first so a failure declares none of them.
	var missing []binding.Named
	for _, kw := range spec.Keywords() {
		if f.store.Has(kw.Name) {
			continue
		}
		if _, err := params.Create(kw.Name, params.NewUpdate(params.Value(kw.Value))); err != nil {
			return nil, fmt.Errorf("add %s plot: %w", kind, err)
		}
		missing = append(missing, kw)
	}
	for _, kw := range missing {
		if _, err := f.store.DeclareOrUpdate(kw.Name, params.Value(kw.Value)); err != nil {
			return nil, fmt.Errorf("add %s plot: %w", kind, err)
		}
	}

	p := &Plot{id: uuid.New(), fig: f, kind: kind, exprs: exprs, binding: spec, attrs: attrs}
	f.plots = append(f.plots, p)
	f.log().Debug("plot added", "id", p.id, "kind", kind, "binding", spec.String())
	return p, nil
}

func defaultLabel(kind snapshot.PlotKind, exprs []sym.Expr) string {
	if kind == snapshot.KindParametric {
		return "(" + exprs[0].String() + ", " + exprs[1].String() + ")"
	}
	return exprs[0].String()
}

// Plots returns the plots in insertion order.
func (f *Figure) Plots() []*Plot { return append([]*Plot(nil), f.plots...) }

// PlotByID finds a plot by handle.
func (f *Figure) PlotByID(id uuid.UUID) (*Plot, bool) {
	for _, p := range f.plots {
		if p.id == id {
			return p, true
		}
	}
	return nil, false
}

// RemovePlot deletes the plot with the given handle.
func (f *Figure) RemovePlot(id uuid.UUID) error {
	for i, p := range f.plots {
		if p.id == id {
			f.plots = append(f.plots[:i:i], f.plots[i+1:]...)
			p.fig = nil
			return nil
		}
	}
	return fmt.Errorf("remove plot %s: %w", id, ErrPlotNotFound)
}

// #endregion plots

// #region infos
// Info adds an info card.
func (f *Figure) Info(segments ...Segment) *InfoCard {
	c := &InfoCard{fig: f, segments: append([]Segment(nil), segments...)}
	f.infos = append(f.infos, c)
	return c
}

// Infos returns the info cards in insertion order.
func (f *Figure) Infos() []*InfoCard { return append([]*InfoCard(nil), f.infos...) }

// #endregion infos

// #region snapshot
// Snapshot reads the live state once and returns an independent copy.
func (f *Figure) Snapshot() snapshot.Figure {
	out := snapshot.Figure{
		Settings: copySettings(f.settings),
		Params:   make([]snapshot.Parameter, 0, f.store.Len()),
		Plots:    make([]snapshot.Plot, 0, len(f.plots)),
		Infos:    make([]snapshot.InfoCard, 0, len(f.infos)),
	}
	for _, p := range f.store.All() {
		out.Params = append(out.Params, snapshot.Parameter{Name: p.Name(), Values: p.Values()})
	}
	for _, p := range f.plots {
		out.Plots = append(out.Plots, p.Snapshot())
	}
	for _, c := range f.infos {
		out.Infos = append(out.Infos, c.Snapshot(f.policy))
	}
	f.log().Debug("snapshot", "params", len(out.Params), "plots", len(out.Plots), "infos", len(out.Infos))
	return out
}

func copySettings(s snapshot.Settings) snapshot.Settings {
	var out snapshot.Settings
	if err := deepcopy.Copy(&out, s); err != nil {
		panic(fmt.Sprintf("figure: copy settings: %v", err))
	}
	return out
}

// Code snapshots the figure and generates Go source that rebuilds it.
func (f *Figure) Code() (string, error) {
	src, err := codegen.Generate(f.Snapshot())
	if err != nil {
		return "", err
	}
	return src.Text, nil
}

// #endregion snapshot
