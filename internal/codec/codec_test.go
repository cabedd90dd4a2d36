package codec

import (
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/danielpatrickdp/livefig/binding"
	"github.com/danielpatrickdp/livefig/figure"
	"github.com/danielpatrickdp/livefig/internal/store"
	"github.com/danielpatrickdp/livefig/params"
	"github.com/danielpatrickdp/livefig/sym"
)

// #region helpers
func dial(t *testing.T, fig *figure.Figure, opts ...ServerOption) *CodecClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	RegisterFigureService(gs, NewServer(fig, opts...))
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewCodecClientWithConn(conn)
}

func wantCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	if got := status.Code(err); got != code {
		t.Fatalf("status = %v, want %v (err %v)", got, code, err)
	}
}
// #endregion helpers

// #region parameter-tests
func TestDeclareAndSet(t *testing.T) {
	fig := figure.New()
	c := dial(t, fig)
	ctx := context.Background()

	v, err := c.DeclareParameter(ctx, "a", map[params.Field]float64{params.FieldMax: 4, params.FieldValue: 2})
	if err != nil {
		t.Fatalf("DeclareParameter: %v", err)
	}
	if v.Value != 2 || v.Max != 4 || v.Min != params.DefaultMin {
		t.Fatalf("values = %+v", v)
	}

	v, err = c.SetParameterField(ctx, "a", params.FieldDefault, 3)
	if err != nil {
		t.Fatalf("SetParameterField: %v", err)
	}
	if v.Default != 3 || v.Value != 2 {
		t.Fatalf("values = %+v", v)
	}

	got, err := c.ParameterFields(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if got != v {
		t.Fatalf("ParameterFields = %+v, want %+v", got, v)
	}
	if p, _ := fig.Param("a"); p.Default() != 3 {
		t.Fatal("server did not mutate the figure")
	}
}

func TestParameterErrors(t *testing.T) {
	fig := figure.New()
	c := dial(t, fig)
	ctx := context.Background()
	if _, err := c.DeclareParameter(ctx, "a", nil); err != nil {
		t.Fatal(err)
	}

	_, err := c.SetParameterField(ctx, "a", params.FieldValue, 5)
	wantCode(t, err, codes.InvalidArgument)
	_, err = c.SetParameterField(ctx, "a", params.Field("colour"), 0)
	wantCode(t, err, codes.InvalidArgument)
	_, err = c.ParameterFields(ctx, "zz")
	wantCode(t, err, codes.NotFound)

	if p, _ := fig.Param("a"); p.Value() != params.DefaultValue {
		t.Fatalf("rejected call changed the parameter: %+v", p.Values())
	}
}
// #endregion parameter-tests

// #region snapshot-tests
func TestSnapshotAndGenerate(t *testing.T) {
	fig := figure.New(figure.WithTitle("rpc"))
	if _, err := fig.Plot(sym.Mul(sym.Symbol("k"), sym.Symbol("x")), binding.Positional{"x"}); err != nil {
		t.Fatal(err)
	}
	st, err := store.NewStore(filepath.Join(t.TempDir(), "rpc.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	c := dial(t, fig, WithArchive(st))
	ctx := context.Background()

	s, err := c.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if s.Settings.Title != "rpc" || len(s.Plots) != 1 || s.Params[0].Name != "k" {
		t.Fatalf("snapshot = %+v", s)
	}

	code, err := c.GenerateCode(ctx, "gallery", "Line", "from-rpc")
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if !strings.Contains(code, "package gallery") || !strings.Contains(code, "func Line()") {
		t.Fatalf("code:\n%s", code)
	}
	rec, err := st.GetCurrent()
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if rec.Label != "from-rpc" || rec.Snapshot.Settings.Title != "rpc" {
		t.Fatalf("archived = %+v", rec)
	}
}

func TestGenerateUnsupported(t *testing.T) {
	fig := figure.New()
	if _, err := fig.Plot(sym.Function("g")(sym.Symbol("x")), binding.Positional{"x"}); err != nil {
		t.Fatal(err)
	}
	c := dial(t, fig)
	_, err := c.GenerateCode(context.Background(), "", "", "")
	wantCode(t, err, codes.FailedPrecondition)
	_, err = c.GenerateCode(context.Background(), "bad name", "", "")
	wantCode(t, err, codes.InvalidArgument)
}
// #endregion snapshot-tests
