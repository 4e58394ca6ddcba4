package main

import (
	"context"
	"net"
	"testing"
	"time"

	"e5_server/config"
	embeddingGrpc "e5_server/embedding/grpc"
	"e5_server/embedding/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncoderOpenAI(t *testing.T) {
	enc, closeFn, err := newEncoder(config.Default().Model)
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &openai.Service{}, enc)
}

func TestNewEncoderGRPC(t *testing.T) {
	cfg := config.Default().Model
	cfg.Backend = config.BackendGRPC
	cfg.Endpoint = "127.0.0.1:50051"

	enc, closeFn, err := newEncoder(cfg)
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &embeddingGrpc.Client{}, enc)
}

func TestNewEncoderUnknown(t *testing.T) {
	cfg := config.Default().Model
	cfg.Backend = "onnx"

	_, closeFn, err := newEncoder(cfg)
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"config", "host", "port", "grpc-port"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()
	return lis.Addr().(*net.TCPAddr).Port
}

func TestRunFailsBeforeListeningWhenBackendIsDown(t *testing.T) {
	cfg := config.Default()
	cfg.Port = freePort(t)
	cfg.Model.Backend = config.BackendGRPC
	cfg.Model.Endpoint = "127.0.0.1:1"
	cfg.Model.LoadTimeout = 2 * time.Second
	require.NoError(t, cfg.Validate())

	err := run(context.Background(), cfg)
	require.Error(t, err)

	conn, dialErr := net.DialTimeout("tcp", cfg.Addr(), time.Second)
	if dialErr == nil {
		conn.Close()
	}
	assert.Error(t, dialErr, "nothing may be served after a failed load")
}
