package embedding

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrZeroVector is returned when a vector cannot be scaled to unit length.
var ErrZeroVector = errors.New("zero vector cannot be normalized")

// ErrNonFinite is returned when a vector holds a NaN or infinite component.
var ErrNonFinite = errors.New("vector has non-finite component")

// Normalize scales v in place to unit L2 norm. The arithmetic is done in
// float64 to keep the norm within float32 rounding of 1.
func Normalize(v []float32) error {
	buf := make([]float64, len(v))
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ErrNonFinite
		}
		buf[i] = f
	}
	norm := floats.Norm(buf, 2)
	if norm == 0 {
		return ErrZeroVector
	}
	floats.Scale(1/norm, buf)
	for i, x := range buf {
		v[i] = float32(x)
	}
	return nil
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	buf := make([]float64, len(v))
	for i, x := range v {
		buf[i] = float64(x)
	}
	return floats.Norm(buf, 2)
}
