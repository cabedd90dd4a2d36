package replay

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielpatrickdp/livefig/binding"
	"github.com/danielpatrickdp/livefig/figure"
	"github.com/danielpatrickdp/livefig/internal/codegen"
	"github.com/danielpatrickdp/livefig/internal/printer"
	"github.com/danielpatrickdp/livefig/params"
	"github.com/danielpatrickdp/livefig/snapshot"
	"github.com/danielpatrickdp/livefig/sym"
)

// #region helpers
func buildLive(t *testing.T, opts ...figure.Option) *figure.Figure {
	t.Helper()
	x, a, b := sym.Symbol("x"), sym.Symbol("a"), sym.Symbol("b")
	f := figure.New(append([]figure.Option{
		figure.WithTitle(`quoted "title"`),
		figure.WithLabels("x", "f(x)"),
		figure.WithXLim(-5, 5),
		figure.WithGrid(true),
	}, opts...)...)

	if _, err := f.Parameter("a", params.Min(-2), params.Max(2), params.Step(0.25)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Plot(sym.Add(sym.Mul(a, sym.Sin(x)), sym.Pow(x, sym.Num(2))),
		binding.PositionalKeyed{Args: []string{"x"}, Keys: []binding.Named{{Name: "a", Value: 0.5}}},
		figure.Label("wave"), figure.LineStyle("dotted"), figure.Domain(-3.5, 3.5)); err != nil {
		t.Fatal(err)
	}
	// b is declared by the plot itself.
	if _, err := f.Parametric(sym.Cos(sym.Symbol("t")), sym.Mul(b, sym.Sin(sym.Symbol("t"))),
		binding.Positional{"t"}, figure.Samples(64)); err != nil {
		t.Fatal(err)
	}
	p, _ := f.Param("a")
	if err := p.SetValue(1.75); err != nil {
		t.Fatal(err)
	}
	if err := p.SetDefault(-0.5); err != nil {
		t.Fatal(err)
	}
	f.Info(figure.Text("a is "), figure.Computed(func(v sym.Env) string { return fmt.Sprint(v["a"]) }), figure.Text("."))
	f.Info()
	return f
}

// #endregion helpers

// #region round-trip-tests
func TestRoundTrip_LiveFigure(t *testing.T) {
	f := buildLive(t)
	want := f.Snapshot()

	code, err := f.Code()
	if err != nil {
		t.Fatalf("Code: %v", err)
	}
	rebuilt, err := Run(code, "")
	if err != nil {
		t.Fatalf("Run: %v\n%s", err, code)
	}
	if d := snapshot.Diff(want, rebuilt.Snapshot()); d != "" {
		t.Fatalf("round trip differs: %s\n%s", d, code)
	}
}

func TestRoundTrip_FrozenInfo(t *testing.T) {
	f := buildLive(t, figure.WithDynamicPolicy(figure.DynamicFreeze))
	s := f.Snapshot()
	if seg := s.Infos[0].Segments[1]; seg.Dynamic || seg.Text != "1.75" {
		t.Fatalf("frozen segment = %+v", seg)
	}
	if _, err := Verify(s); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestRoundTrip_CustomFuncName(t *testing.T) {
	s := buildLive(t).Snapshot()
	if _, err := Verify(s, codegen.WithPackage("gallery"), codegen.WithFuncName("Wave")); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestRoundTrip_Fixture(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "damped_wave.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if err := f.Check(); err != nil {
		t.Fatalf("fixture %q: %v", f.Description, err)
	}
}

// #endregion round-trip-tests

// #region verify-tests
func TestVerify_DetectsMismatch(t *testing.T) {
	s := buildLive(t).Snapshot()
	s.Plots[0].Params = nil
	_, err := Verify(s)
	var me *MismatchError
	if !errors.As(err, &me) {
		t.Fatalf("expected MismatchError, got %v", err)
	}
	if !strings.Contains(me.Diff, "plots[0].params") {
		t.Fatalf("diff = %q", me.Diff)
	}
}

func TestVerify_Unsupported(t *testing.T) {
	s := buildLive(t).Snapshot()
	s.Plots[0].Exprs = []sym.Expr{sym.Function("g")(sym.Symbol("x"))}
	if _, err := Verify(s); !errors.Is(err, printer.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestVerifyAll(t *testing.T) {
	good := buildLive(t).Snapshot()
	bad := buildLive(t).Snapshot()
	bad.Plots[1].Params = []string{"zz"}
	results, sum := VerifyAll(map[string]snapshot.Figure{"good": good, "bad": bad}, []string{"good", "bad", "missing"})
	if sum.Total != 2 || sum.Matches != 1 || sum.Mismatches != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if results[0].Action != "match" || results[1].Action != "mismatch" {
		t.Fatalf("results = %+v", results)
	}
}

func TestRebuild(t *testing.T) {
	live := buildLive(t)
	fig, err := Rebuild(live.Snapshot())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	a, ok := fig.Param("a")
	if !ok || a.Value() != 1.75 {
		t.Fatalf("rebuilt parameter = %+v", a)
	}
	if err := a.SetValue(0); err != nil {
		t.Fatal(err)
	}
	if p, _ := live.Param("a"); p.Value() != 1.75 {
		t.Fatal("rebuilt figure shares state with the original")
	}
}

// #endregion verify-tests

// #region run-tests
func TestRun_Rejects(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"not go", "this is not go"},
		{"no build func", "package p\nfunc Other() {}"},
		{"unknown statement", "package p\nfunc Build() (*figure.Figure, error) {\nfor {}\n}"},
		{"foreign call", "package p\nfunc Build() (*figure.Figure, error) {\nfig := os.Exit(1)\nreturn fig, nil\n}"},
		{"no return", "package p\nfunc Build() (*figure.Figure, error) {\nfig := figure.New()\n_ = fig\n}"},
		{"undeclared symbol", "package p\nfunc Build() (*figure.Figure, error) {\nfig := figure.New()\n" +
			"if _, err := fig.Plot(q, binding.Positional{\"x\"}); err != nil {\nreturn nil, err\n}\nreturn fig, nil\n}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Run(tc.src, ""); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRun_PropagatesFigureErrors(t *testing.T) {
	src := "package p\nfunc Build() (*figure.Figure, error) {\nfig := figure.New()\n" +
		"if _, err := fig.Parameter(\"a\", params.Min(5), params.Max(1)); err != nil {\nreturn nil, err\n}\nreturn fig, nil\n}"
	if _, err := Run(src, ""); !errors.Is(err, params.ErrRange) {
		t.Fatalf("expected ErrRange, got %v", err)
	}
}

// #endregion run-tests
