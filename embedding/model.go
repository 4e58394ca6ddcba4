package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"e5_server/metrics"
)

// loadProbe is encoded once at startup to prove the backend serves the model
// and to learn its output dimension.
const loadProbe = "passage: warmup"

// Handle is a loaded embedding model. It is created once by Load and is
// read-only afterwards, so it can be shared by concurrent requests.
type Handle struct {
	name      string
	dimension int
	encoder   Encoder
}

// Load binds encoder as the backend for model name. When dimension is zero it
// is detected from the probe; otherwise the probe must match it.
func Load(ctx context.Context, name string, dimension int, encoder Encoder) (*Handle, error) {
	if name == "" {
		return nil, errors.New("empty model name")
	}
	if encoder == nil {
		return nil, errors.New("nil encoder")
	}
	if dimension < 0 {
		return nil, fmt.Errorf("invalid model dimension: %d", dimension)
	}

	start := time.Now()
	vectors, err := encoder.Encode(ctx, []string{loadProbe})
	if err != nil {
		return nil, fmt.Errorf("fail to load model %s: %w", name, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("fail to load model %s: probe returned %d vectors", name, len(vectors))
	}
	detected := len(vectors[0])
	if detected == 0 {
		return nil, fmt.Errorf("fail to load model %s: probe returned empty vector", name)
	}
	if dimension != 0 && dimension != detected {
		return nil, fmt.Errorf("model %s dimension mismatch: configured %d, backend returned %d", name, dimension, detected)
	}

	slog.Info("Model loaded", "model", name, "dimension", detected, "duration", time.Since(start).String())
	return &Handle{
		name:      name,
		dimension: detected,
		encoder:   encoder,
	}, nil
}

// Name implements Model
func (h *Handle) Name() string {
	return h.name
}

// Dimension implements Model
func (h *Handle) Dimension() int {
	return h.dimension
}

// Encode implements Encoder. The whole slice goes to the backend in a single
// call; every returned vector is checked against the model dimension and
// scaled to unit L2 norm.
func (h *Handle) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	start := time.Now()
	vectors, err := h.encoder.Encode(ctx, texts)
	metrics.EncodeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EncodeErrorsTotal.Inc()
		return nil, fmt.Errorf("fail to encode %d texts: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		metrics.EncodeErrorsTotal.Inc()
		return nil, fmt.Errorf("backend returned %d vectors for %d texts", len(vectors), len(texts))
	}

	for i, v := range vectors {
		if len(v) != h.dimension {
			metrics.EncodeErrorsTotal.Inc()
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), h.dimension)
		}
		if err := Normalize(v); err != nil {
			metrics.EncodeErrorsTotal.Inc()
			return nil, fmt.Errorf("fail to normalize vector %d: %w", i, err)
		}
	}

	metrics.TextsEncodedTotal.Add(float64(len(texts)))
	return vectors, nil
}
