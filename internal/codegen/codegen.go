// Package codegen turns a figure snapshot into Go source that rebuilds an
// equivalent figure. Output depends only on the snapshot and the options, so
// the same input always yields byte-identical text.
package codegen

import (
	"fmt"
	"go/format"
	"go/token"
	"math"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/livefig/binding"
	"github.com/danielpatrickdp/livefig/internal/printer"
	"github.com/danielpatrickdp/livefig/snapshot"
	"github.com/danielpatrickdp/livefig/sym"
)

// #region types
// StatementKind labels a top-level statement of the generated source.
type StatementKind string

const (
	KindPreamble  StatementKind = "preamble"
	KindSymbol    StatementKind = "symbol"
	KindFigure    StatementKind = "figure"
	KindParameter StatementKind = "parameter"
	KindPlot      StatementKind = "plot"
	KindInfo      StatementKind = "info"
	KindResult    StatementKind = "result"
)

// Statement is one emitted statement, before formatting.
type Statement struct {
	Kind StatementKind
	Text string
}

// Source is the result of a generation run.
type Source struct {
	Text       string
	Statements []Statement
}

// Header is the first line of every generated file.
const Header = "// Code generated by figcode. DO NOT EDIT."

// DynamicMarker follows every placeholder segment in the emitted source.
const DynamicMarker = "// dynamic content not captured"

// Import paths of the packages generated code calls.
const (
	ImportBinding = "github.com/danielpatrickdp/livefig/binding"
	ImportFigure  = "github.com/danielpatrickdp/livefig/figure"
	ImportParams  = "github.com/danielpatrickdp/livefig/params"
	ImportSym     = "github.com/danielpatrickdp/livefig/sym"
)

// #endregion types

// #region options
// Config controls the surrounding file.
type Config struct {
	Package  string
	FuncName string
}

// DefaultConfig returns the package and function names used when no option
// overrides them.
func DefaultConfig() Config {
	return Config{Package: "figures", FuncName: "Build"}
}

// Validate reports names that are not Go identifiers.
func (c Config) Validate() error {
	if !token.IsIdentifier(c.Package) {
		return fmt.Errorf("invalid package name %q", c.Package)
	}
	if !token.IsIdentifier(c.FuncName) {
		return fmt.Errorf("invalid function name %q", c.FuncName)
	}
	return nil
}

// Option configures Generate.
type Option func(*Config)

func WithPackage(name string) Option  { return func(c *Config) { c.Package = name } }
func WithFuncName(name string) Option { return func(c *Config) { c.FuncName = name } }

// #endregion options

// #region generate
// Generate emits, in order: the preamble, symbol declarations, figure
// construction, parameter setup, plot registration, info registration and
// the final return. It returns no text when any step fails.
func Generate(s snapshot.Figure, opts ...Option) (Source, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Source{}, fmt.Errorf("generate: %w", err)
	}

	g := &generator{cfg: cfg, idents: newIdents(s.Symbols())}
	var body []Statement
	for _, name := range s.Symbols() {
		body = append(body, Statement{Kind: KindSymbol,
			Text: g.idents.byName[name] + " := sym.Symbol(" + strconv.Quote(name) + ")"})
	}
	body = append(body, Statement{Kind: KindFigure, Text: g.figure(s.Settings)})
	for _, p := range s.Params {
		body = append(body, Statement{Kind: KindParameter, Text: g.parameter(p)})
	}
	for i, pl := range s.Plots {
		text, err := g.plot(pl)
		if err != nil {
			return Source{}, fmt.Errorf("generate plot %d: %w", i, err)
		}
		body = append(body, Statement{Kind: KindPlot, Text: text})
	}
	for _, c := range s.Infos {
		body = append(body, Statement{Kind: KindInfo, Text: g.info(c)})
	}
	body = append(body, Statement{Kind: KindResult, Text: "return fig, nil"})
	if g.err != nil {
		return Source{}, fmt.Errorf("generate: %w", g.err)
	}

	preamble := Statement{Kind: KindPreamble, Text: g.preamble(s)}
	stmts := append([]Statement{preamble}, body...)

	var b strings.Builder
	b.WriteString(preamble.Text)
	fmt.Fprintf(&b, "\n// %s reconstructs the figure.\nfunc %s() (*figure.Figure, error) {\n", cfg.FuncName, cfg.FuncName)
	for _, st := range body {
		b.WriteString(st.Text)
		b.WriteByte('\n')
	}
	b.WriteString("}\n")

	formatted, err := format.Source([]byte(b.String()))
	if err != nil {
		return Source{}, fmt.Errorf("format generated source: %w", err)
	}
	return Source{Text: string(formatted), Statements: stmts}, nil
}

type generator struct {
	cfg    Config
	idents *idents
	err    error
}

func (g *generator) preamble(s snapshot.Figure) string {
	var imports []string
	if len(s.Plots) > 0 {
		imports = append(imports, ImportBinding)
	}
	imports = append(imports, ImportFigure)
	if len(s.Params) > 0 {
		imports = append(imports, ImportParams)
	}
	if len(s.Plots) > 0 {
		imports = append(imports, ImportSym)
	}
	var b strings.Builder
	b.WriteString(Header + "\n\npackage " + g.cfg.Package + "\n\nimport (\n")
	for _, imp := range imports {
		b.WriteString("\t" + strconv.Quote(imp) + "\n")
	}
	b.WriteString(")\n")
	return b.String()
}

func (g *generator) figure(st snapshot.Settings) string {
	opts := []string{
		"figure.WithTitle(" + strconv.Quote(st.Title) + ")",
		fmt.Sprintf("figure.WithSize(%d, %d)", st.Width, st.Height),
		"figure.WithLabels(" + strconv.Quote(st.XLabel) + ", " + strconv.Quote(st.YLabel) + ")",
	}
	if st.XLim != nil {
		opts = append(opts, "figure.WithXLim("+g.num(st.XLim.Min)+", "+g.num(st.XLim.Max)+")")
	}
	if st.YLim != nil {
		opts = append(opts, "figure.WithYLim("+g.num(st.YLim.Min)+", "+g.num(st.YLim.Max)+")")
	}
	opts = append(opts,
		"figure.WithGrid("+strconv.FormatBool(st.Grid)+")",
		"figure.WithLegend("+strconv.FormatBool(st.Legend)+")",
	)
	return "fig := figure.New(\n" + strings.Join(opts, ",\n") + ",\n)"
}

// parameter emits every field, including those equal to the system defaults.
func (g *generator) parameter(p snapshot.Parameter) string {
	return "if _, err := fig.Parameter(" + strconv.Quote(p.Name) +
		", params.Min(" + g.num(p.Min) + ")" +
		", params.Max(" + g.num(p.Max) + ")" +
		", params.Step(" + g.num(p.Step) + ")" +
		", params.Default(" + g.num(p.Default) + ")" +
		", params.Value(" + g.num(p.Value) + ")" +
		"); err != nil {\nreturn nil, err\n}"
}

func (g *generator) plot(pl snapshot.Plot) (string, error) {
	exprs := make([]string, len(pl.Exprs))
	for i, e := range pl.Exprs {
		text, err := printer.Print(e, printer.WithResolver(g.idents.resolve))
		if err != nil {
			return "", err
		}
		exprs[i] = text
	}

	var call string
	switch pl.Kind {
	case snapshot.KindLine:
		if len(exprs) != 1 {
			return "", fmt.Errorf("line plot with %d expressions", len(exprs))
		}
		call = "fig.Plot("
	case snapshot.KindParametric:
		if len(exprs) != 2 {
			return "", fmt.Errorf("parametric plot with %d expressions", len(exprs))
		}
		call = "fig.Parametric("
	default:
		return "", fmt.Errorf("unknown plot kind %q", pl.Kind)
	}

	st := pl.Style
	args := append(exprs, g.bindingLiteral(pl.Binding),
		"figure.Label("+strconv.Quote(st.Label)+")",
		"figure.Color("+strconv.Quote(st.Color)+")",
		"figure.LineWidth("+g.num(st.LineWidth)+")",
		"figure.LineStyle("+strconv.Quote(st.LineStyle)+")",
		"figure.Samples("+strconv.Itoa(st.Samples)+")",
		"figure.Domain("+g.num(pl.Domain.Min)+", "+g.num(pl.Domain.Max)+")",
		"figure.Hidden("+strconv.FormatBool(st.Hidden)+")",
	)
	return "if _, err := " + call + "\n" + strings.Join(args, ",\n") + ",\n); err != nil {\nreturn nil, err\n}", nil
}

func (g *generator) bindingLiteral(spec binding.Spec) string {
	quoted := func(names []string) string {
		q := make([]string, len(names))
		for i, n := range names {
			q[i] = strconv.Quote(n)
		}
		return strings.Join(q, ", ")
	}
	switch in := spec.Input().(type) {
	case binding.Positional:
		return "binding.Positional{" + quoted(in) + "}"
	case binding.PositionalKeyed:
		keys := make([]string, len(in.Keys))
		for i, k := range in.Keys {
			keys[i] = "{Name: " + strconv.Quote(k.Name) + ", Value: " + g.num(k.Value) + "}"
		}
		return "binding.PositionalKeyed{Args: []string{" + quoted(in.Args) +
			"}, Keys: []binding.Named{" + strings.Join(keys, ", ") + "}}"
	}
	panic(fmt.Sprintf("codegen: unexpected binding input %T", spec.Input()))
}

func (g *generator) info(c snapshot.InfoCard) string {
	if len(c.Segments) == 0 {
		return "fig.Info()"
	}
	var b strings.Builder
	b.WriteString("fig.Info(\n")
	for _, seg := range c.Segments {
		if seg.Dynamic {
			b.WriteString("figure.Placeholder(), " + DynamicMarker + "\n")
			continue
		}
		b.WriteString("figure.Text(" + strconv.Quote(seg.Text) + "),\n")
	}
	b.WriteString(")")
	return b.String()
}

// num formats v as a Go literal and records the first non-finite value.
func (g *generator) num(v float64) string {
	if (math.IsNaN(v) || math.IsInf(v, 0)) && g.err == nil {
		g.err = fmt.Errorf("non-finite number %v", v)
	}
	return sym.FormatNumber(v)
}

// #endregion generate
