package codec

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/danielpatrickdp/livefig/params"
	"github.com/danielpatrickdp/livefig/snapshot"
)

// #region client-struct
// CodecClient wraps a gRPC connection to a FigureService.
type CodecClient struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}
// #endregion client-struct

// #region constructor
// NewCodecClient connects to the figure service at addr.
func NewCodecClient(addr string) (*CodecClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &CodecClient{conn: conn, cc: conn}, nil
}

// NewCodecClientWithConn creates a CodecClient over an existing connection.
// Close is a no-op for such clients.
func NewCodecClientWithConn(cc grpc.ClientConnInterface) *CodecClient {
	return &CodecClient{cc: cc}
}
// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *CodecClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
// #endregion close

// #region parameters
// DeclareParameter creates or updates a parameter with the given fields.
func (c *CodecClient) DeclareParameter(ctx context.Context, name string, set map[params.Field]float64) (params.Values, error) {
	m := map[string]any{"name": name}
	for f, v := range set {
		m[string(f)] = v
	}
	in, err := structpb.NewStruct(m)
	if err != nil {
		return params.Values{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodDeclareParameter, in, out); err != nil {
		return params.Values{}, fmt.Errorf("declare parameter rpc: %w", err)
	}
	return values(out), nil
}

// SetParameterField writes one field of a parameter.
func (c *CodecClient) SetParameterField(ctx context.Context, name string, f params.Field, v float64) (params.Values, error) {
	in, err := structpb.NewStruct(map[string]any{"name": name, "field": string(f), "value": v})
	if err != nil {
		return params.Values{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodSetParameterField, in, out); err != nil {
		return params.Values{}, fmt.Errorf("set parameter field rpc: %w", err)
	}
	return values(out), nil
}

// ParameterFields reads every field of a parameter.
func (c *CodecClient) ParameterFields(ctx context.Context, name string) (params.Values, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodParameterFields, wrapperspb.String(name), out); err != nil {
		return params.Values{}, fmt.Errorf("parameter fields rpc: %w", err)
	}
	return values(out), nil
}

func values(s *structpb.Struct) params.Values {
	m := s.GetFields()
	return params.Values{
		Value:   m[string(params.FieldValue)].GetNumberValue(),
		Default: m[string(params.FieldDefault)].GetNumberValue(),
		Min:     m[string(params.FieldMin)].GetNumberValue(),
		Max:     m[string(params.FieldMax)].GetNumberValue(),
		Step:    m[string(params.FieldStep)].GetNumberValue(),
	}
}
// #endregion parameters

// #region snapshot
// Snapshot fetches and decodes the server's current snapshot.
func (c *CodecClient) Snapshot(ctx context.Context) (snapshot.Figure, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, MethodSnapshot, new(structpb.Struct), out); err != nil {
		return snapshot.Figure{}, fmt.Errorf("snapshot rpc: %w", err)
	}
	return snapshot.Unmarshal([]byte(out.GetValue()))
}

// GenerateCode asks the server for Go source. Empty pkg, fn and label leave
// the server defaults in place.
func (c *CodecClient) GenerateCode(ctx context.Context, pkg, fn, label string) (string, error) {
	m := map[string]any{}
	if pkg != "" {
		m["package"] = pkg
	}
	if fn != "" {
		m["func"] = fn
	}
	if label != "" {
		m["label"] = label
	}
	in, err := structpb.NewStruct(m)
	if err != nil {
		return "", err
	}
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, MethodGenerateCode, in, out); err != nil {
		return "", fmt.Errorf("generate code rpc: %w", err)
	}
	return out.GetValue(), nil
}
// #endregion snapshot
