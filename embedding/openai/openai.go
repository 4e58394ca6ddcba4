package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

// Service implements embedding.Encoder against any server that speaks the
// OpenAI /v1/embeddings API (text-embeddings-inference, Infinity, vLLM).
type Service struct {
	client *goopenai.Client
	model  goopenai.EmbeddingModel
}

// New creates an OpenAI-compatible encoder backend
func New(cfg Config) (*Service, error) {
	if cfg.Model == "" {
		return nil, errors.New("empty embedding model name")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	apiKeyEnv := cfg.APIKeyEnv
	if apiKeyEnv == "" {
		apiKeyEnv = DefaultAPIKeyEnv
	}

	clientConfig := goopenai.DefaultConfig(os.Getenv(apiKeyEnv))
	clientConfig.BaseURL = strings.TrimSuffix(endpoint, "/")

	return &Service{
		client: goopenai.NewClientWithConfig(clientConfig),
		model:  goopenai.EmbeddingModel(cfg.Model),
	}, nil
}

// Encode implements embedding.Encoder
func (s *Service) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := s.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input:          texts,
		Model:          s.model,
		EncodingFormat: goopenai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("fail to do embedding request: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d items for %d inputs", len(resp.Data), len(texts))
	}

	// servers are allowed to return data out of order; Index is authoritative
	result := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(result) {
			return nil, fmt.Errorf("embedding response index %d out of range", data.Index)
		}
		if result[data.Index] != nil {
			return nil, fmt.Errorf("embedding response has duplicate index %d", data.Index)
		}
		result[data.Index] = data.Embedding
	}
	return result, nil
}
