package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// The encoder service is small enough that its messages are carried in
// well-known types instead of generated code:
//
//	service EmbeddingService {
//	  // texts: list of strings; result: list of lists of numbers
//	  rpc Encode(google.protobuf.ListValue) returns (google.protobuf.ListValue);
//	}
const (
	ServiceName  = "e5.EmbeddingService"
	encodeMethod = "/" + ServiceName + "/Encode"
)

// EncoderServer is the server API for EmbeddingService
type EncoderServer interface {
	Encode(ctx context.Context, texts *structpb.ListValue) (*structpb.ListValue, error)
}

// RegisterEncoderServer registers srv on s, the way protoc-generated
// Register functions do.
func RegisterEncoderServer(s grpc.ServiceRegistrar, srv EncoderServer) {
	s.RegisterService(&encoderServiceDesc, srv)
}

func encodeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.ListValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EncoderServer).Encode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: encodeMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EncoderServer).Encode(ctx, req.(*structpb.ListValue))
	}
	return interceptor(ctx, in, info, handler)
}

var encoderServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EncoderServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Encode",
			Handler:    encodeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "e5/embedding.proto",
}
