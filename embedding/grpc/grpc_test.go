package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"e5_server/embedding"
	"e5_server/embedding/embeddingtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const testModel = "intfloat/multilingual-e5-large"

// startServer serves model over an in-memory listener and returns a client
// connected to it.
func startServer(t *testing.T, model embedding.Model) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	Register(gs, model)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	client, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func loadModel(t *testing.T, enc embedding.Encoder, dim int) *embedding.Handle {
	t.Helper()
	h, err := embedding.Load(context.Background(), testModel, dim, enc)
	require.NoError(t, err)
	return h
}

func TestClientServerRoundTrip(t *testing.T) {
	enc := embeddingtest.NewEncoder(16)
	client := startServer(t, loadModel(t, enc, 16))

	texts := []string{"passage: first", "query: second"}
	vectors, err := client.Encode(context.Background(), texts)
	require.NoError(t, err)

	assert.Equal(t, texts, enc.LastCall())
	require.Len(t, vectors, 2)
	for i, v := range vectors {
		assert.Len(t, v, 16)
		assert.InDelta(t, 1.0, embedding.Norm(v), 1e-5)

		want := embeddingtest.Vector(texts[i], 16)
		require.NoError(t, embedding.Normalize(want))
		assert.InDeltaSlice(t, want, v, 1e-6)
	}
}

func TestClientAsLoadBackend(t *testing.T) {
	client := startServer(t, loadModel(t, embeddingtest.NewEncoder(8), 8))

	remote, err := embedding.Load(context.Background(), testModel, 8, client)
	require.NoError(t, err)
	assert.Equal(t, 8, remote.Dimension())

	vectors, err := remote.Encode(context.Background(), []string{"passage: x"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, embedding.Norm(vectors[0]), 1e-5)
}

func TestServerEncodeError(t *testing.T) {
	enc := embeddingtest.NewEncoder(4)
	h := loadModel(t, enc, 4)
	enc.Err = errors.New("out of memory")
	client := startServer(t, h)

	_, err := client.Encode(context.Background(), []string{"passage: x"})
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(errors.Unwrap(err)))
}

func TestServerRejectsNonString(t *testing.T) {
	srv := NewServer(loadModel(t, embeddingtest.NewEncoder(4), 4))

	req, err := structpb.NewList([]interface{}{"ok", 42.0})
	require.NoError(t, err)

	_, err = srv.Encode(context.Background(), req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealthServing(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	Register(gs, loadModel(t, embeddingtest.NewEncoder(4), 4))
	go gs.Serve(lis)
	defer gs.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestListToVectorsRejectsMalformed(t *testing.T) {
	notList, err := structpb.NewList([]interface{}{"x"})
	require.NoError(t, err)
	_, err = listToVectors(notList)
	assert.Error(t, err)

	notNumber, err := structpb.NewList([]interface{}{[]interface{}{1.0, "y"}})
	require.NoError(t, err)
	_, err = listToVectors(notNumber)
	assert.Error(t, err)
}
