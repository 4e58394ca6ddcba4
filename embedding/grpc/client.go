package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client implements embedding.Encoder by calling a remote EmbeddingService
type Client struct {
	conn *grpc.ClientConn
}

func NewClient(address string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to embedding service: %w", err)
	}

	return &Client{
		conn: conn,
	}, nil
}

// Encode implements embedding.Encoder
func (c *Client) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	req := &structpb.ListValue{Values: make([]*structpb.Value, len(texts))}
	for i, text := range texts {
		req.Values[i] = structpb.NewStringValue(text)
	}

	resp := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, encodeMethod, req, resp); err != nil {
		return nil, fmt.Errorf("failed to get embedding: %w", err)
	}

	return listToVectors(resp)
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func listToVectors(list *structpb.ListValue) ([][]float32, error) {
	out := make([][]float32, len(list.GetValues()))
	for i, v := range list.GetValues() {
		row := v.GetListValue()
		if row == nil {
			return nil, fmt.Errorf("embedding %d is not a list", i)
		}
		vec := make([]float32, len(row.GetValues()))
		for j, x := range row.GetValues() {
			num, ok := x.GetKind().(*structpb.Value_NumberValue)
			if !ok {
				return nil, fmt.Errorf("embedding %d item %d is not a number", i, j)
			}
			vec[j] = float32(num.NumberValue)
		}
		out[i] = vec
	}
	return out, nil
}
