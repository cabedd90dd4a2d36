package figure

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/livefig/binding"
	"github.com/danielpatrickdp/livefig/params"
	"github.com/danielpatrickdp/livefig/snapshot"
	"github.com/danielpatrickdp/livefig/sym"
)

// #region helpers
func demo(t *testing.T) (*Figure, *Plot) {
	t.Helper()
	f := New(WithTitle("demo"), WithXLim(-1, 1))
	if _, err := f.Parameter("a", params.Value(0.5)); err != nil {
		t.Fatal(err)
	}
	x, a := sym.Symbol("x"), sym.Symbol("a")
	p, err := f.Plot(sym.Mul(a, sym.Sin(x)), binding.Positional{"x"}, Label("wave"))
	if err != nil {
		t.Fatalf("Plot: %v", err)
	}
	f.Info(Text("a = "), Computed(func(v sym.Env) string { return fmt.Sprint(v["a"]) }))
	return f, p
}

// #endregion helpers

// #region snapshot-tests
func TestSnapshot_ConsecutiveAreEqualButDistinct(t *testing.T) {
	f, _ := demo(t)
	s1, s2 := f.Snapshot(), f.Snapshot()
	if d := snapshot.Diff(s1, s2); d != "" {
		t.Fatalf("consecutive snapshots differ: %s", d)
	}
	if s1.Settings.XLim == s2.Settings.XLim {
		t.Fatal("snapshots share the x limit pointer")
	}
	if &s1.Params[0] == &s2.Params[0] || &s1.Plots[0].Exprs[0] == &s2.Plots[0].Exprs[0] {
		t.Fatal("snapshots share backing arrays")
	}
	s1.Settings.XLim.Max = 99
	s1.Plots[0].Params[0] = "mutated"
	s1.Infos[0].Segments[0].Text = "mutated"
	if d := snapshot.Diff(s2, f.Snapshot()); d != "" {
		t.Fatalf("editing one snapshot leaked: %s", d)
	}
}

func TestSnapshot_IndependentOfLaterMutation(t *testing.T) {
	f, p := demo(t)
	before := f.Snapshot()

	a, _ := f.Param("a")
	if err := a.SetValue(0.9); err != nil {
		t.Fatal(err)
	}
	if err := p.Update(Color("#000000"), Domain(0, 1)); err != nil {
		t.Fatal(err)
	}
	f.Update(WithTitle("changed"), WithXLim(-9, 9))
	f.Info(Text("late"))

	if before.Params[0].Value != 0.5 || before.Settings.Title != "demo" || before.Settings.XLim.Max != 1 {
		t.Fatalf("snapshot changed after mutation: %+v", before)
	}
	if before.Plots[0].Domain.Max != 10 || len(before.Infos) != 1 {
		t.Fatalf("snapshot changed after mutation: %+v", before)
	}
	if snapshot.Diff(before, f.Snapshot()) == "" {
		t.Fatal("new snapshot should reflect the mutations")
	}
}

func TestSnapshot_ContentsCaptured(t *testing.T) {
	f, _ := demo(t)
	s := f.Snapshot()
	if len(s.Params) != 1 || s.Params[0].Name != "a" || s.Params[0].Step != params.DefaultStep {
		t.Fatalf("params = %+v", s.Params)
	}
	pl := s.Plots[0]
	if pl.Kind != snapshot.KindLine || pl.Style.Label != "wave" || pl.Style.Color != palette[0] {
		t.Fatalf("plot = %+v", pl)
	}
	if got := pl.Binding.String(); got != "(x; a=0.5)" {
		t.Fatalf("binding = %s", got)
	}
	if pl.Params[0] != "a" {
		t.Fatalf("plot params = %v", pl.Params)
	}
	seg := s.Infos[0].Segments[1]
	if !seg.Dynamic || seg.Text != snapshot.DynamicPlaceholder {
		t.Fatalf("dynamic segment = %+v", seg)
	}
}

func TestSnapshot_FreezePolicy(t *testing.T) {
	f, _ := demo(t)
	f.Update(WithDynamicPolicy(DynamicFreeze))
	seg := f.Snapshot().Infos[0].Segments[1]
	if seg.Dynamic || seg.Text != "0.5" {
		t.Fatalf("frozen segment = %+v", seg)
	}
	card := f.Info(Placeholder())
	if got := card.Snapshot(DynamicFreeze).Segments[0]; !got.Dynamic {
		t.Fatalf("placeholder without renderer must stay dynamic, got %+v", got)
	}
}

func TestSnapshot_MissingParameterPanics(t *testing.T) {
	f, _ := demo(t)
	f.store = params.NewStore()
	defer func() {
		r := recover()
		if r == nil || !strings.Contains(fmt.Sprint(r), `missing parameter "a"`) {
			t.Fatalf("expected panic naming the parameter, got %v", r)
		}
	}()
	f.Snapshot()
}

// #endregion snapshot-tests

// #region plot-tests
func TestPlot_AutoDeclaresFreeSymbols(t *testing.T) {
	f := New()
	e := sym.Add(sym.Mul(sym.Symbol("k"), sym.Symbol("x")), sym.Symbol("c"))
	p, err := f.Plot(e, binding.PositionalKeyed{Args: []string{"x"}, Keys: []binding.Named{{Name: "c", Value: 0.25}}})
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Params().Names(); strings.Join(got, ",") != "c,k" {
		t.Fatalf("declared params = %v", got)
	}
	c, _ := f.Param("c")
	if c.Value() != 0.25 || c.Default() != 0.25 {
		t.Fatalf("c = %+v", c.Values())
	}
	if got := p.Params(); strings.Join(got, ",") != "c,k" {
		t.Fatalf("plot params = %v", got)
	}
}

func TestPlot_BindingErrors(t *testing.T) {
	f := New()
	x := sym.Symbol("x")
	if _, err := f.Plot(x, binding.PositionalKeyed{Args: []string{"x"}, Keys: []binding.Named{{Name: "x"}}}); !errors.Is(err, binding.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := f.Plot(x, binding.IndexedKeyed{Indexed: map[int]string{1: "x"}}); !errors.Is(err, binding.ErrGap) {
		t.Fatalf("expected gap, got %v", err)
	}
	var ve *VariablesError
	if _, err := f.Plot(x, binding.Positional{"x", "y"}); !errors.As(err, &ve) {
		t.Fatalf("expected VariablesError, got %v", err)
	}
	if _, err := f.Plot(x, binding.Keyed{{Name: "a"}}); !errors.As(err, &ve) {
		t.Fatalf("expected VariablesError, got %v", err)
	}
	if len(f.Plots()) != 0 || f.Params().Len() != 0 {
		t.Fatal("failed plots must not change the figure")
	}
}

func TestPlot_OutOfRangeKeywordDeclaresNothing(t *testing.T) {
	f := New()
	e := sym.Add(sym.Symbol("p"), sym.Symbol("q"), sym.Symbol("x"))
	_, err := f.Plot(e, binding.PositionalKeyed{Args: []string{"x"}, Keys: []binding.Named{{Name: "p", Value: 0.5}, {Name: "q", Value: 7}}})
	if !errors.Is(err, params.ErrRange) {
		t.Fatalf("expected ErrRange, got %v", err)
	}
	if f.Params().Len() != 0 {
		t.Fatalf("expected no parameters, got %v", f.Params().Names())
	}
}

func TestPlot_StyleValidation(t *testing.T) {
	f := New()
	x := sym.Symbol("x")
	for _, opt := range []PlotOption{LineWidth(0), Samples(1), LineStyle("wavy"), Domain(2, 1)} {
		if _, err := f.Plot(x, binding.Positional{"x"}, opt); !errors.Is(err, ErrStyle) {
			t.Fatalf("expected ErrStyle, got %v", err)
		}
	}
	p, err := f.Plot(x, binding.Positional{"x"})
	if err != nil {
		t.Fatal(err)
	}
	before := p.Style()
	if err := p.Update(Color("red"), Samples(0)); !errors.Is(err, ErrStyle) {
		t.Fatalf("expected ErrStyle, got %v", err)
	}
	if p.Style() != before {
		t.Fatal("rejected update changed the style")
	}
}

func TestPlot_Eval(t *testing.T) {
	f, p := demo(t)
	_, y, err := p.Eval(0)
	if err != nil || y != 0 {
		t.Fatalf("Eval(0) = %g, %v", y, err)
	}
	c, err := f.Parametric(sym.Symbol("t"), sym.Mul(sym.Num(2), sym.Symbol("t")), binding.Positional{"t"})
	if err != nil {
		t.Fatal(err)
	}
	x, y, err := c.Eval(3)
	if err != nil || x != 3 || y != 6 {
		t.Fatalf("Eval(3) = (%g, %g), %v", x, y, err)
	}
}

func TestRemove(t *testing.T) {
	f, p := demo(t)
	if err := f.RemoveParameter("a"); !errors.Is(err, params.ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
	if err := f.RemovePlot(uuid.New()); !errors.Is(err, ErrPlotNotFound) {
		t.Fatalf("expected ErrPlotNotFound, got %v", err)
	}
	if _, ok := f.PlotByID(p.ID()); !ok {
		t.Fatal("PlotByID should find the plot")
	}
	if err := f.RemovePlot(p.ID()); err != nil {
		t.Fatal(err)
	}
	if err := f.RemoveParameter("a"); err != nil {
		t.Fatalf("RemoveParameter after plot removal: %v", err)
	}
	if s := f.Snapshot(); len(s.Plots) != 0 || len(s.Params) != 0 {
		t.Fatalf("snapshot = %+v", s)
	}
}

// #endregion plot-tests

// #region info-tests
func TestInfoRender(t *testing.T) {
	f, _ := demo(t)
	card := f.Infos()[0]
	if got := card.Render(sym.Env{"a": 2}); got != "a = 2" {
		t.Fatalf("Render = %q", got)
	}
	if got := f.Info(Text("v="), Placeholder()).Render(nil); got != "v="+snapshot.DynamicPlaceholder {
		t.Fatalf("Render = %q", got)
	}
}

// #endregion info-tests

// #region code-tests
func TestCode(t *testing.T) {
	f, _ := demo(t)
	code, err := f.Code()
	if err != nil {
		t.Fatalf("Code: %v", err)
	}
	if !strings.Contains(code, "func Build() (*figure.Figure, error)") || !strings.Contains(code, `fig.Parameter("a"`) {
		t.Fatalf("unexpected code:\n%s", code)
	}
	again, _ := f.Code()
	if again != code {
		t.Fatal("Code is not deterministic")
	}

	if _, err := f.Plot(sym.Function("g")(sym.Symbol("x")), binding.Positional{"x"}); err != nil {
		t.Fatal(err)
	}
	if code, err := f.Code(); err == nil || code != "" {
		t.Fatalf("expected failure for undefined function, got %q, %v", code, err)
	}
}

// #endregion code-tests
