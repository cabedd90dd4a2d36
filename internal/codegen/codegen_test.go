package codegen

import (
	"errors"
	"go/parser"
	"go/token"
	"math"
	"strings"
	"testing"

	"github.com/danielpatrickdp/livefig/binding"
	"github.com/danielpatrickdp/livefig/internal/printer"
	"github.com/danielpatrickdp/livefig/params"
	"github.com/danielpatrickdp/livefig/snapshot"
	"github.com/danielpatrickdp/livefig/sym"
)

// #region helpers
func spec(t *testing.T, in binding.Input) binding.Spec {
	t.Helper()
	s, err := binding.Normalize(in)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return s
}

func sampleSnapshot(t *testing.T) snapshot.Figure {
	t.Helper()
	x, a := sym.Symbol("x"), sym.Symbol("a")
	return snapshot.Figure{
		Settings: snapshot.Settings{Title: "demo", Width: 640, Height: 480, XLabel: "x", YLabel: "y",
			YLim: &snapshot.Range{Min: -2, Max: 2}, Legend: true},
		Params: []snapshot.Parameter{
			{Name: "a", Values: params.Values{Value: 0.5, Default: 0, Min: -1, Max: 1, Step: 0.01}},
			{Name: "b", Values: params.Values{Value: 0, Default: 0, Min: -1, Max: 1, Step: 0.01}},
		},
		Plots: []snapshot.Plot{{
			Kind:    snapshot.KindLine,
			Exprs:   []sym.Expr{sym.Mul(a, sym.Sin(x))},
			Binding: spec(t, binding.PositionalKeyed{Args: []string{"x"}, Keys: []binding.Named{{Name: "a", Value: 0.5}}}),
			Params:  []string{"a"},
			Style:   snapshot.Style{Label: "a*sin(x)", Color: "#1f77b4", LineWidth: 1.5, LineStyle: "solid", Samples: 200},
			Domain:  snapshot.Range{Min: -10, Max: 10},
		}},
		Infos: []snapshot.InfoCard{{Segments: []snapshot.Segment{
			{Text: "a = "},
			{Dynamic: true, Text: snapshot.DynamicPlaceholder},
		}}},
	}
}

func generate(t *testing.T, s snapshot.Figure, opts ...Option) Source {
	t.Helper()
	src, err := Generate(s, opts...)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return src
}

// #endregion helpers

// #region generate-tests
func TestGenerate_Deterministic(t *testing.T) {
	s := sampleSnapshot(t)
	first := generate(t, s).Text
	for i := 0; i < 5; i++ {
		if got := generate(t, s).Text; got != first {
			t.Fatalf("run %d differs:\n%s\n---\n%s", i, got, first)
		}
	}
}

func TestGenerate_StatementOrder(t *testing.T) {
	src := generate(t, sampleSnapshot(t))
	var kinds []string
	for _, st := range src.Statements {
		kinds = append(kinds, string(st.Kind))
	}
	want := "preamble,symbol,symbol,figure,parameter,parameter,plot,info,result"
	if got := strings.Join(kinds, ","); got != want {
		t.Fatalf("statement kinds = %s, want %s", got, want)
	}
	if !strings.HasPrefix(src.Text, Header) {
		t.Fatalf("missing header:\n%s", src.Text)
	}
}

func TestGenerate_ParsesAsGo(t *testing.T) {
	src := generate(t, sampleSnapshot(t))
	if _, err := parser.ParseFile(token.NewFileSet(), "gen.go", src.Text, parser.ParseComments); err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, src.Text)
	}
}

func TestGenerate_EmitsEveryParameterField(t *testing.T) {
	text := generate(t, sampleSnapshot(t)).Text
	want := `fig.Parameter("b", params.Min(-1), params.Max(1), params.Step(0.01), params.Default(0), params.Value(0))`
	if !strings.Contains(text, want) {
		t.Fatalf("expected all fields for a default parameter:\n%s", text)
	}
}

func TestGenerate_Content(t *testing.T) {
	text := generate(t, sampleSnapshot(t)).Text
	for _, want := range []string{
		`a := sym.Symbol("a")`,
		`x := sym.Symbol("x")`,
		`figure.WithTitle("demo")`,
		`figure.WithYLim(-2, 2)`,
		`sym.Mul(a, sym.Sin(x))`,
		`binding.PositionalKeyed{Args: []string{"x"}, Keys: []binding.Named{{Name: "a", Value: 0.5}}}`,
		`figure.Domain(-10, 10)`,
		`figure.Placeholder(), ` + DynamicMarker,
		`return fig, nil`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, "WithXLim") {
		t.Errorf("auto-scaled axis should not emit a limit:\n%s", text)
	}
}

func TestGenerate_Options(t *testing.T) {
	text := generate(t, sampleSnapshot(t), WithPackage("plots"), WithFuncName("Waves")).Text
	if !strings.Contains(text, "package plots") || !strings.Contains(text, "func Waves() (*figure.Figure, error)") {
		t.Fatalf("options not applied:\n%s", text)
	}
	if _, err := Generate(sampleSnapshot(t), WithPackage("no good")); err == nil {
		t.Fatal("expected error for invalid package name")
	}
	if _, err := Generate(sampleSnapshot(t), WithFuncName("func")); err == nil {
		t.Fatal("expected error for keyword function name")
	}
}

func TestGenerate_EmptyFigure(t *testing.T) {
	src := generate(t, snapshot.Figure{Settings: snapshot.Settings{Width: 1, Height: 1}})
	if strings.Contains(src.Text, ImportSym) || strings.Contains(src.Text, ImportParams) || strings.Contains(src.Text, ImportBinding) {
		t.Fatalf("unused imports emitted:\n%s", src.Text)
	}
	if _, err := parser.ParseFile(token.NewFileSet(), "gen.go", src.Text, 0); err != nil {
		t.Fatalf("parse: %v", err)
	}
}

func TestGenerate_UnsupportedExpression(t *testing.T) {
	s := sampleSnapshot(t)
	f := sym.Function("f")
	s.Plots[0].Exprs = []sym.Expr{sym.Add(f(sym.Symbol("x")), sym.Symbol("a"))}
	src, err := Generate(s)
	var ue *printer.UnsupportedExpressionError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnsupportedExpressionError, got %v", err)
	}
	if ue.Construct != "f(x)" {
		t.Fatalf("construct = %q", ue.Construct)
	}
	if src.Text != "" || src.Statements != nil {
		t.Fatalf("expected no output on failure, got %+v", src)
	}
}

func TestGenerate_NonFiniteRejected(t *testing.T) {
	s := sampleSnapshot(t)
	s.Settings.XLim = &snapshot.Range{Min: math.Inf(-1), Max: 0}
	if _, err := Generate(s); err == nil {
		t.Fatal("expected error for infinite axis limit")
	}
}

// #endregion generate-tests

// #region names-tests
func TestIdents(t *testing.T) {
	id := newIdents([]string{"x", "fig", "a b", "a_b", "1st", "nil", "θ"})
	want := map[string]string{
		"x":   "x",
		"fig": "fig_2",
		"a b": "a_b",
		"a_b": "a_b_2",
		"1st": "s1st",
		"nil": "nil_2",
		"θ":   "θ",
	}
	for name, ident := range want {
		if got, _ := id.resolve(name); got != ident {
			t.Errorf("ident(%q) = %q, want %q", name, got, ident)
		}
	}
}

func TestGenerate_SymbolNamesPreserved(t *testing.T) {
	s := sampleSnapshot(t)
	s.Plots[0].Exprs = []sym.Expr{sym.Mul(sym.Symbol("a"), sym.Symbol("fig"))}
	s.Plots[0].Binding = spec(t, binding.PositionalKeyed{Args: []string{"fig"}, Keys: []binding.Named{{Name: "a", Value: 0.5}}})
	text := generate(t, s).Text
	if !strings.Contains(text, `fig_2 := sym.Symbol("fig")`) {
		t.Fatalf("expected renamed identifier with the exact name:\n%s", text)
	}
}

// #endregion names-tests
