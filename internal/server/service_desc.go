package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "cibil.v1.ExtractionService"

const (
	methodExtractText = "/" + ServiceName + "/ExtractText"
	methodExtractFile = "/" + ServiceName + "/ExtractFile"
	methodExportRun   = "/" + ServiceName + "/ExportRun"
)

// ExtractionServer is the server API for the extraction service.
// Messages are well-known protobuf types so no generated code is needed.
type ExtractionServer interface {
	// ExtractText parses report text supplied inline.
	ExtractText(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// ExtractFile processes a report file readable by the server.
	ExtractFile(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// ExportRun renders a stored run; the request carries run_id and format.
	ExportRun(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
}

// ExtractionServiceDesc describes ExtractionServer for grpc.Server.RegisterService.
var ExtractionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExtractionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ExtractText", Handler: unaryHandler(methodExtractText, ExtractionServer.ExtractText)},
		{MethodName: "ExtractFile", Handler: unaryHandler(methodExtractFile, ExtractionServer.ExtractFile)},
		{MethodName: "ExportRun", Handler: unaryHandler(methodExportRun, ExtractionServer.ExportRun)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cibil/v1/extraction.proto",
}

func RegisterExtractionServer(s grpc.ServiceRegistrar, srv ExtractionServer) {
	s.RegisterService(&ExtractionServiceDesc, srv)
}

func unaryHandler[Req, Resp any](fullMethod string, call func(ExtractionServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ExtractionServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ExtractionServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ExtractionClient is the client API for the extraction service.
type ExtractionClient struct {
	cc grpc.ClientConnInterface
}

func NewExtractionClient(cc grpc.ClientConnInterface) *ExtractionClient {
	return &ExtractionClient{cc: cc}
}

func (c *ExtractionClient) ExtractText(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodExtractText, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ExtractionClient) ExtractFile(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodExtractFile, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ExtractionClient) ExportRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, methodExportRun, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
