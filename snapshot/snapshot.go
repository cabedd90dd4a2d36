package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/danielpatrickdp/livefig/binding"
	"github.com/danielpatrickdp/livefig/sym"
)

// #region lookup
// Param returns the parameter called name.
func (f Figure) Param(name string) (Parameter, bool) {
	for _, p := range f.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Symbols lists every distinct symbol referenced by the plots, in first-seen
// order across plots and expressions.
func (f Figure) Symbols() []string {
	seen := make(map[string]bool)
	var out []string
	for _, pl := range f.Plots {
		for _, e := range pl.Exprs {
			for _, name := range sym.FreeSymbols(e) {
				if !seen[name] {
					seen[name] = true
					out = append(out, name)
				}
			}
		}
	}
	return out
}

// ParamValues returns the current value of every parameter.
func (f Figure) ParamValues() sym.Env {
	env := make(sym.Env, len(f.Params))
	for _, p := range f.Params {
		env[p.Name] = p.Value
	}
	return env
}

// #endregion lookup

// #region equality
// Equal reports structural equality.
func (f Figure) Equal(o Figure) bool { return Diff(f, o) == "" }

// Equal reports structural equality.
func (p Plot) Equal(o Plot) bool { return diffPlot("plot", p, o) == "" }

// Equal reports structural equality.
func (c InfoCard) Equal(o InfoCard) bool { return diffInfo("info", c, o) == "" }

// Diff describes the first field where a and b differ, or returns "" when
// they are structurally equal.
func Diff(a, b Figure) string {
	if d := diffSettings(a.Settings, b.Settings); d != "" {
		return d
	}
	if len(a.Params) != len(b.Params) {
		return fmt.Sprintf("params: %d entries vs %d", len(a.Params), len(b.Params))
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return fmt.Sprintf("params[%d]: %+v vs %+v", i, a.Params[i], b.Params[i])
		}
	}
	if len(a.Plots) != len(b.Plots) {
		return fmt.Sprintf("plots: %d entries vs %d", len(a.Plots), len(b.Plots))
	}
	for i := range a.Plots {
		if d := diffPlot(fmt.Sprintf("plots[%d]", i), a.Plots[i], b.Plots[i]); d != "" {
			return d
		}
	}
	if len(a.Infos) != len(b.Infos) {
		return fmt.Sprintf("infos: %d entries vs %d", len(a.Infos), len(b.Infos))
	}
	for i := range a.Infos {
		if d := diffInfo(fmt.Sprintf("infos[%d]", i), a.Infos[i], b.Infos[i]); d != "" {
			return d
		}
	}
	return ""
}

func diffSettings(a, b Settings) string {
	if !equalRange(a.XLim, b.XLim) {
		return fmt.Sprintf("settings.x_lim: %v vs %v", a.XLim, b.XLim)
	}
	if !equalRange(a.YLim, b.YLim) {
		return fmt.Sprintf("settings.y_lim: %v vs %v", a.YLim, b.YLim)
	}
	a.XLim, a.YLim, b.XLim, b.YLim = nil, nil, nil, nil
	if a != b {
		return fmt.Sprintf("settings: %+v vs %+v", a, b)
	}
	return ""
}

func equalRange(a, b *Range) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func diffPlot(path string, a, b Plot) string {
	if a.Kind != b.Kind {
		return fmt.Sprintf("%s.kind: %s vs %s", path, a.Kind, b.Kind)
	}
	if len(a.Exprs) != len(b.Exprs) {
		return fmt.Sprintf("%s.exprs: %d vs %d", path, len(a.Exprs), len(b.Exprs))
	}
	for i := range a.Exprs {
		if !sym.Equal(a.Exprs[i], b.Exprs[i]) {
			return fmt.Sprintf("%s.exprs[%d]: %v vs %v", path, i, a.Exprs[i], b.Exprs[i])
		}
	}
	if !a.Binding.Equal(b.Binding) {
		return fmt.Sprintf("%s.binding: %v vs %v", path, a.Binding, b.Binding)
	}
	if len(a.Params) != len(b.Params) {
		return fmt.Sprintf("%s.params: %v vs %v", path, a.Params, b.Params)
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return fmt.Sprintf("%s.params: %v vs %v", path, a.Params, b.Params)
		}
	}
	if a.Style != b.Style {
		return fmt.Sprintf("%s.style: %+v vs %+v", path, a.Style, b.Style)
	}
	if a.Domain != b.Domain {
		return fmt.Sprintf("%s.domain: %+v vs %+v", path, a.Domain, b.Domain)
	}
	return ""
}

func diffInfo(path string, a, b InfoCard) string {
	if len(a.Segments) != len(b.Segments) {
		return fmt.Sprintf("%s.segments: %d vs %d", path, len(a.Segments), len(b.Segments))
	}
	for i := range a.Segments {
		if a.Segments[i] != b.Segments[i] {
			return fmt.Sprintf("%s.segments[%d]: %+v vs %+v", path, i, a.Segments[i], b.Segments[i])
		}
	}
	return ""
}

// #endregion equality

// #region json
type plotJSON struct {
	Kind    PlotKind     `json:"kind"`
	Exprs   []sym.Node   `json:"exprs"`
	Binding binding.Spec `json:"binding"`
	Params  []string     `json:"params"`
	Style   Style        `json:"style"`
	Domain  Range        `json:"domain"`
}

// MarshalJSON encodes expressions as sym.Node trees.
func (p Plot) MarshalJSON() ([]byte, error) {
	nodes := make([]sym.Node, len(p.Exprs))
	for i, e := range p.Exprs {
		nodes[i] = sym.Encode(e)
	}
	return json.Marshal(plotJSON{
		Kind: p.Kind, Exprs: nodes, Binding: p.Binding,
		Params: p.Params, Style: p.Style, Domain: p.Domain,
	})
}

// UnmarshalJSON decodes and validates the expression trees.
func (p *Plot) UnmarshalJSON(data []byte) error {
	var raw plotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	exprs := make([]sym.Expr, len(raw.Exprs))
	for i, n := range raw.Exprs {
		e, err := sym.Decode(n)
		if err != nil {
			return fmt.Errorf("decode plot expression %d: %w", i, err)
		}
		exprs[i] = e
	}
	*p = Plot{
		Kind: raw.Kind, Exprs: exprs, Binding: raw.Binding,
		Params: raw.Params, Style: raw.Style, Domain: raw.Domain,
	}
	return nil
}

// Marshal encodes a figure snapshot as JSON.
func Marshal(f Figure) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a figure snapshot from JSON.
func Unmarshal(data []byte) (Figure, error) {
	var f Figure
	if err := json.Unmarshal(data, &f); err != nil {
		return Figure{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return f, nil
}

// #endregion json
