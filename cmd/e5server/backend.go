package main

import (
	"fmt"

	"e5_server/config"
	"e5_server/embedding"
	embeddingGrpc "e5_server/embedding/grpc"
	"e5_server/embedding/openai"
)

// newEncoder builds the backend named in cfg. The returned close func is
// always non-nil.
func newEncoder(cfg config.ModelConfig) (embedding.Encoder, func(), error) {
	switch cfg.Backend {
	case config.BackendGRPC:
		client, err := embeddingGrpc.NewClient(cfg.Endpoint)
		if err != nil {
			return nil, func() {}, err
		}
		return client, func() { client.Close() }, nil
	case config.BackendOpenAI:
		svc, err := openai.New(openai.Config{
			Endpoint:  cfg.Endpoint,
			Model:     cfg.Name,
			APIKeyEnv: cfg.APIKeyEnv,
		})
		if err != nil {
			return nil, func() {}, err
		}
		return svc, func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown model backend: %q", cfg.Backend)
	}
}
