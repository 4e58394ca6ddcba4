package grpc

import (
	"context"
	"log/slog"

	"e5_server/embedding"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server exposes a loaded embedding.Model over gRPC
type Server struct {
	model embedding.Model
}

func NewServer(model embedding.Model) *Server {
	return &Server{
		model: model,
	}
}

// Register adds the encoder and the standard health service to gs. The model
// is already loaded when this is called, so health starts out SERVING.
func Register(gs *grpc.Server, model embedding.Model) *health.Server {
	RegisterEncoderServer(gs, NewServer(model))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return hs
}

// Encode implements EncoderServer. Texts are passed to the model as given;
// prefixing is the caller's job.
func (s *Server) Encode(ctx context.Context, req *structpb.ListValue) (*structpb.ListValue, error) {
	texts := make([]string, len(req.GetValues()))
	for i, v := range req.GetValues() {
		str, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "item %d is not a string", i)
		}
		texts[i] = str.StringValue
	}

	vectors, err := s.model.Encode(ctx, texts)
	if err != nil {
		slog.Error("gRPC encode failed", "texts", len(texts), "error", err)
		return nil, status.Errorf(codes.Internal, "fail to encode: %s", err)
	}

	return vectorsToList(vectors), nil
}

func vectorsToList(vectors [][]float32) *structpb.ListValue {
	out := &structpb.ListValue{Values: make([]*structpb.Value, len(vectors))}
	for i, v := range vectors {
		row := &structpb.ListValue{Values: make([]*structpb.Value, len(v))}
		for j, x := range v {
			row.Values[j] = structpb.NewNumberValue(float64(x))
		}
		out.Values[i] = structpb.NewListValue(row)
	}
	return out
}
