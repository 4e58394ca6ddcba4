// Package embeddingtest provides a deterministic in-memory encoder for tests.
package embeddingtest

import (
	"context"
	"hash/fnv"
	"sync"
)

// Encoder returns Vector(text, Dim) for every input and records each call.
// Set Err to make every call fail.
type Encoder struct {
	Dim int
	Err error

	mu    sync.Mutex
	calls [][]string
}

func NewEncoder(dim int) *Encoder {
	return &Encoder{Dim: dim}
}

func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls = append(e.calls, append([]string(nil), texts...))
	err := e.Err
	e.mu.Unlock()

	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = Vector(text, e.Dim)
	}
	return out, nil
}

// Calls returns a copy of every batch passed to Encode, oldest first.
func (e *Encoder) Calls() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]string(nil), e.calls...)
}

// LastCall returns the most recent batch, or nil.
func (e *Encoder) LastCall() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.calls) == 0 {
		return nil
	}
	return e.calls[len(e.calls)-1]
}

// Vector derives a non-zero, unnormalized vector from text.
func Vector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	v := make([]float32, dim)
	for i := range v {
		v[i] = float32((seed>>(uint(i)%24))&0xff) + 1
	}
	return v
}
