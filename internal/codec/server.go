package codec

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/danielpatrickdp/livefig/figure"
	"github.com/danielpatrickdp/livefig/internal/codegen"
	"github.com/danielpatrickdp/livefig/internal/logging"
	"github.com/danielpatrickdp/livefig/internal/printer"
	"github.com/danielpatrickdp/livefig/internal/store"
	"github.com/danielpatrickdp/livefig/params"
	"github.com/danielpatrickdp/livefig/snapshot"
)

// #region server
// Server implements FigureService over a single figure. Calls are handled one
// at a time; the figure itself does no locking.
type Server struct {
	mu      sync.Mutex
	fig     *figure.Figure
	archive *store.Store
	codegen []codegen.Option
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithArchive commits every successful GenerateCode call to st.
func WithArchive(st *store.Store) ServerOption { return func(s *Server) { s.archive = st } }

// WithCodegen sets the default generator options. Request fields override them.
func WithCodegen(opts ...codegen.Option) ServerOption {
	return func(s *Server) { s.codegen = append(s.codegen, opts...) }
}

// NewServer wraps fig.
func NewServer(fig *figure.Figure, opts ...ServerOption) *Server {
	s := &Server{fig: fig}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
// #endregion server

// #region parameters
func (s *Server) DeclareParameter(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := in.GetFields()["name"].GetStringValue()
	var opts []params.Option
	for key, v := range in.GetFields() {
		if key == "name" {
			continue
		}
		f, err := params.ParseField(key)
		if err != nil {
			return nil, rpcError(err)
		}
		if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
			return nil, status.Errorf(codes.InvalidArgument, "field %q: want a number", key)
		}
		opts = append(opts, params.Set(f, v.GetNumberValue()))
	}
	p, err := s.fig.Parameter(name, opts...)
	if err != nil {
		return nil, rpcError(err)
	}
	return fields(p.Values())
}

func (s *Server) SetParameterField(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := in.GetFields()
	p, err := s.param(m["name"].GetStringValue())
	if err != nil {
		return nil, err
	}
	f, err := params.ParseField(m["field"].GetStringValue())
	if err != nil {
		return nil, rpcError(err)
	}
	if _, ok := m["value"].GetKind().(*structpb.Value_NumberValue); !ok {
		return nil, status.Error(codes.InvalidArgument, "value: want a number")
	}
	if err := p.Set(f, m["value"].GetNumberValue()); err != nil {
		return nil, rpcError(err)
	}
	return fields(p.Values())
}

func (s *Server) ParameterFields(_ context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.param(in.GetValue())
	if err != nil {
		return nil, err
	}
	return fields(p.Values())
}

func (s *Server) param(name string) (*params.Parameter, error) {
	p, ok := s.fig.Param(name)
	if !ok {
		return nil, rpcError(fmt.Errorf("%w: %q", params.ErrNotFound, name))
	}
	return p, nil
}

func fields(v params.Values) (*structpb.Struct, error) {
	m := make(map[string]any, len(params.Fields()))
	for _, f := range params.Fields() {
		m[string(f)] = v.Get(f)
	}
	return structpb.NewStruct(m)
}
// #endregion parameters

// #region snapshot
func (s *Server) Snapshot(_ context.Context, _ *structpb.Struct) (*wrapperspb.StringValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := snapshot.Marshal(s.fig.Snapshot())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.String(string(data)), nil
}

func (s *Server) GenerateCode(_ context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := append([]codegen.Option(nil), s.codegen...)
	m := in.GetFields()
	if v, ok := m["package"]; ok {
		opts = append(opts, codegen.WithPackage(v.GetStringValue()))
	}
	if v, ok := m["func"]; ok {
		opts = append(opts, codegen.WithFuncName(v.GetStringValue()))
	}
	cfg := codegen.DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	snap := s.fig.Snapshot()
	src, genErr := codegen.Generate(snap, opts...)
	if s.archive != nil {
		rec, err := s.archive.Commit(snap, m["label"].GetStringValue(), "rpc", cfg, src, genErr)
		if err != nil && genErr == nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		if genErr == nil {
			logging.Logger().Debug("rpc generate archived", "version", rec.VersionID)
		}
	}
	if genErr != nil {
		return nil, rpcError(genErr)
	}
	return wrapperspb.String(src.Text), nil
}
// #endregion snapshot

// #region errors
// rpcError maps domain errors onto gRPC status codes.
func rpcError(err error) error {
	logging.Logger().Warn("rpc rejected", "err", err)
	var uf *params.UnknownFieldError
	switch {
	case errors.Is(err, params.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, params.ErrRange), errors.As(err, &uf):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, printer.ErrUnsupported):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	return status.Error(codes.InvalidArgument, err.Error())
}
// #endregion errors
