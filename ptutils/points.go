// Package ptutils holds coordinate-level helpers for 3D point sets:
// homogeneous lifting, handedness conversion and quantized deduplication.
package ptutils

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/erh/vcamutils"
)

// ToHomogeneous lifts points into N x 4 row form with w = 1. gonum cannot
// represent a zero-row matrix, so an empty point set is an error; callers
// that accept empty sets must short-circuit before lifting.
func ToHomogeneous(pts []r3.Vector) (*mat.Dense, error) {
	if len(pts) == 0 {
		return nil, errors.New("cannot lift an empty point set")
	}
	out := mat.NewDense(len(pts), 4, nil)
	for i, p := range pts {
		out.SetRow(i, []float64{p.X, p.Y, p.Z, 1})
	}
	return out, nil
}

// FromHomogeneous drops the w column. Rigid transforms keep w at 1, so no
// perspective divide happens here.
func FromHomogeneous(m *mat.Dense) ([]r3.Vector, error) {
	rows, cols := m.Dims()
	if cols != 4 {
		return nil, vcamutils.NewShapeMismatchError("homogeneous point columns", cols, 4)
	}
	out := make([]r3.Vector, rows)
	for i := 0; i < rows; i++ {
		out[i] = r3.Vector{X: m.At(i, 0), Y: m.At(i, 1), Z: m.At(i, 2)}
	}
	return out, nil
}

// HandednessMode names a coordinate-convention conversion direction.
type HandednessMode string

const (
	HandednessLeftToRight HandednessMode = "L2R"
	// HandednessRightToLeft is recognized but not implemented; requesting it
	// always fails.
	HandednessRightToLeft HandednessMode = "R2L"
)

// leftToRightTransform swaps the x and y axes and flips z.
func leftToRightTransform() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		0, 1, 0, 0,
		1, 0, 0, 0,
		0, 0, -1, 0,
		0, 0, 0, 1,
	})
}

// ConvertPointsHandedness moves points between the two axis conventions.
func ConvertPointsHandedness(pts []r3.Vector, mode HandednessMode) ([]r3.Vector, error) {
	if mode != HandednessLeftToRight {
		return nil, vcamutils.ErrUnsupportedMode
	}
	out := make([]r3.Vector, len(pts))
	for i, p := range pts {
		out[i] = r3.Vector{X: p.Y, Y: p.X, Z: -p.Z}
	}
	return out, nil
}

// ConvertTransformHandedness re-expresses a 4x4 transform by left-multiplying
// the fixed swap matrix.
func ConvertTransformHandedness(tp *mat.Dense, mode HandednessMode) (*mat.Dense, error) {
	if mode != HandednessLeftToRight {
		return nil, vcamutils.ErrUnsupportedMode
	}
	if rows, cols := tp.Dims(); rows != 4 || cols != 4 {
		return nil, vcamutils.NewShapeMismatchError("transform size", rows*cols, 16)
	}
	var out mat.Dense
	out.Mul(leftToRightTransform(), tp)
	return &out, nil
}

// Deduplicate quantizes every coordinate to the given number of decimal
// digits and keeps the first point of each quantized cell, preserving the
// order of first appearance. Points closer than 10^-precision in every axis
// collapse into one. Returns the surviving points at original precision and
// their indices in the input.
func Deduplicate(pts []r3.Vector, precision int) ([]r3.Vector, []int) {
	scale := math.Pow(10, float64(precision))

	seen := map[[3]int64]bool{}
	out := []r3.Vector{}
	indices := []int{}
	for i, p := range pts {
		key := [3]int64{
			int64(math.Round(p.X * scale)),
			int64(math.Round(p.Y * scale)),
			int64(math.Round(p.Z * scale)),
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
		indices = append(indices, i)
	}
	return out, indices
}
