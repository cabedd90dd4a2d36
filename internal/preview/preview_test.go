package preview

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/danielpatrickdp/livefig/binding"
	"github.com/danielpatrickdp/livefig/figure"
	"github.com/danielpatrickdp/livefig/params"
	"github.com/danielpatrickdp/livefig/sym"
)

func TestSample(t *testing.T) {
	f := figure.New()
	if _, err := f.Parameter("a", params.Max(3), params.Value(2)); err != nil {
		t.Fatal(err)
	}
	x := sym.Symbol("x")
	if _, err := f.Plot(sym.Mul(sym.Symbol("a"), x), binding.Positional{"x"}, figure.Domain(0, 1), figure.Samples(3)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Plot(x, binding.Positional{"x"}, figure.Hidden(true)); err != nil {
		t.Fatal(err)
	}

	series, b := Sample(f.Snapshot())
	if len(series) != 1 {
		t.Fatalf("hidden plots must be skipped, got %d series", len(series))
	}
	run := series[0].Runs[0]
	if len(run) != 3 || run[2] != (Point{1, 2}) {
		t.Fatalf("run = %v", run)
	}
	if b.X.Min != 0 || b.X.Max != 1 || b.Y.Min != 0 || b.Y.Max != 2 {
		t.Fatalf("bounds = %+v", b)
	}

	f.Update(figure.WithYLim(-5, 5))
	if _, b := Sample(f.Snapshot()); b.Y.Min != -5 || b.Y.Max != 5 {
		t.Fatalf("axis limits should win, got %+v", b)
	}
}

func TestSampleSplitsOnNonFinite(t *testing.T) {
	f := figure.New()
	x := sym.Symbol("x")
	if _, err := f.Plot(sym.Div(sym.Num(1), x), binding.Positional{"x"}, figure.Domain(-1, 1), figure.Samples(3)); err != nil {
		t.Fatal(err)
	}
	series, _ := Sample(f.Snapshot())
	if got := len(series[0].Runs); got != 2 {
		t.Fatalf("expected the pole to split the series, got %d runs", got)
	}
	for _, run := range series[0].Runs {
		for _, p := range run {
			if math.IsInf(p.Y, 0) {
				t.Fatalf("non-finite point kept: %v", p)
			}
		}
	}
}

func TestRender(t *testing.T) {
	f := figure.New(figure.WithGrid(true))
	if _, err := f.Plot(sym.Sin(sym.Symbol("x")), binding.Positional{"x"}, figure.LineStyle("dashed"), figure.Color("red")); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Render(f.Snapshot(), &buf, WithSize(120, 80)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Fatalf("size = %v", b)
	}

	if err := Render(f.Snapshot(), &buf, WithSize(0, 10)); err == nil {
		t.Fatal("expected error for empty canvas")
	}
}
