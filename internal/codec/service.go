// Package codec exposes a live figure over gRPC so that a kernel or another
// process can drive parameters and pull snapshots and generated code.
//
// Messages are the well-known google.protobuf.Struct and StringValue types,
// so no generated stubs are needed on either side.
package codec

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "livefig.v1.FigureService"

// Full method names.
const (
	MethodDeclareParameter  = "/" + ServiceName + "/DeclareParameter"
	MethodSetParameterField = "/" + ServiceName + "/SetParameterField"
	MethodParameterFields   = "/" + ServiceName + "/ParameterFields"
	MethodSnapshot          = "/" + ServiceName + "/Snapshot"
	MethodGenerateCode      = "/" + ServiceName + "/GenerateCode"
)

// #region service
// FigureService is the server-side contract.
//
//   - DeclareParameter: {name, min?, max?, step?, default_value?, value?} -> fields
//   - SetParameterField: {name, field, value} -> fields
//   - ParameterFields: name -> fields
//   - Snapshot: {} -> snapshot JSON
//   - GenerateCode: {package?, func?, label?} -> Go source
type FigureService interface {
	DeclareParameter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetParameterField(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ParameterFields(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Snapshot(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	GenerateCode(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
}

// RegisterFigureService registers srv on s.
func RegisterFigureService(s grpc.ServiceRegistrar, srv FigureService) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FigureService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "DeclareParameter", Handler: structHandler(MethodDeclareParameter, FigureService.DeclareParameter)},
		{MethodName: "SetParameterField", Handler: structHandler(MethodSetParameterField, FigureService.SetParameterField)},
		{MethodName: "ParameterFields", Handler: unary(MethodParameterFields, func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }, FigureService.ParameterFields)},
		{MethodName: "Snapshot", Handler: unary(MethodSnapshot, func() *structpb.Struct { return new(structpb.Struct) }, FigureService.Snapshot)},
		{MethodName: "GenerateCode", Handler: unary(MethodGenerateCode, func() *structpb.Struct { return new(structpb.Struct) }, FigureService.GenerateCode)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "livefig/v1/figure.proto",
}

func structHandler(method string, call func(FigureService, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return unary(method, func() *structpb.Struct { return new(structpb.Struct) }, call)
}

// unary builds the decode/intercept/dispatch boilerplate protoc-gen-go-grpc
// would otherwise generate per method.
func unary[Req, Resp any](method string, newReq func() Req, call func(FigureService, context.Context, Req) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FigureService), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FigureService), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
// #endregion service
