package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"e5_server/embedding/embeddingtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "intfloat/multilingual-e5-large"

func TestLoadDetectsDimension(t *testing.T) {
	enc := embeddingtest.NewEncoder(1024)

	h, err := Load(context.Background(), testModel, 0, enc)
	require.NoError(t, err)

	assert.Equal(t, testModel, h.Name())
	assert.Equal(t, 1024, h.Dimension())
	require.Len(t, enc.Calls(), 1)
	assert.Equal(t, []string{loadProbe}, enc.Calls()[0])
}

func TestLoadChecksConfiguredDimension(t *testing.T) {
	_, err := Load(context.Background(), testModel, 1024, embeddingtest.NewEncoder(768))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")

	h, err := Load(context.Background(), testModel, 768, embeddingtest.NewEncoder(768))
	require.NoError(t, err)
	assert.Equal(t, 768, h.Dimension())
}

func TestLoadFailsWhenBackendFails(t *testing.T) {
	enc := embeddingtest.NewEncoder(16)
	enc.Err = errors.New("connection refused")

	_, err := Load(context.Background(), testModel, 16, enc)
	require.Error(t, err)
	assert.ErrorIs(t, err, enc.Err)
}

func TestLoadRejectsBadArguments(t *testing.T) {
	enc := embeddingtest.NewEncoder(4)

	_, err := Load(context.Background(), "", 4, enc)
	assert.Error(t, err)
	_, err = Load(context.Background(), testModel, -1, enc)
	assert.Error(t, err)
	_, err = Load(context.Background(), testModel, 4, nil)
	assert.Error(t, err)
	_, err = Load(context.Background(), testModel, 0, embeddingtest.NewEncoder(0))
	assert.Error(t, err)
}

func TestEncodeNormalizesAndKeepsOrder(t *testing.T) {
	enc := embeddingtest.NewEncoder(32)
	h, err := Load(context.Background(), testModel, 32, enc)
	require.NoError(t, err)

	texts := []string{"passage: one", "passage: two", "query: three"}
	vectors, err := h.Encode(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))

	assert.Equal(t, texts, enc.LastCall(), "texts must reach the backend in one call, unchanged")
	for i, v := range vectors {
		assert.Len(t, v, 32)
		assert.InDelta(t, 1.0, Norm(v), 1e-5)

		want := embeddingtest.Vector(texts[i], 32)
		require.NoError(t, Normalize(want))
		assert.InDeltaSlice(t, want, v, 1e-6)
	}
}

func TestEncodeEmptyDoesNotCallBackend(t *testing.T) {
	enc := embeddingtest.NewEncoder(8)
	h, err := Load(context.Background(), testModel, 8, enc)
	require.NoError(t, err)

	vectors, err := h.Encode(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, vectors)
	assert.Empty(t, vectors)
	assert.Len(t, enc.Calls(), 1, "only the load probe")
}

type stubEncoder func(texts []string) ([][]float32, error)

func (f stubEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	return f(texts)
}

func TestEncodeRejectsBadBackendOutput(t *testing.T) {
	var out [][]float32
	enc := stubEncoder(func(texts []string) ([][]float32, error) {
		if out == nil {
			return [][]float32{{1, 1, 1}}, nil
		}
		return out, nil
	})
	h, err := Load(context.Background(), testModel, 3, enc)
	require.NoError(t, err)

	out = [][]float32{{1, 2, 3}}
	_, err = h.Encode(context.Background(), []string{"a", "b"})
	assert.ErrorContains(t, err, "returned 1 vectors for 2 texts")

	out = [][]float32{{1, 2}}
	_, err = h.Encode(context.Background(), []string{"a"})
	assert.ErrorContains(t, err, "dimension 2, want 3")

	out = [][]float32{{0, 0, 0}}
	_, err = h.Encode(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrZeroVector)

	out = [][]float32{{float32(math.NaN()), 1, 1}}
	_, err = h.Encode(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrNonFinite)

	out = [][]float32{{1, float32(math.Inf(1)), 1}}
	_, err = h.Encode(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrNonFinite)
}
