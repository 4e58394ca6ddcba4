package embedding

import "context"

// Encoder defines the interface for turning texts into embedding vectors.
// Implementations return exactly one vector per input, in input order.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Model is an Encoder bound to a fixed model identity
type Model interface {
	Encoder
	Name() string
	Dimension() int
}
