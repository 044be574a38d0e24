package poseutils

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/erh/vcamutils"
)

// AverageExtrinsics reduces a batch of rigid transforms to one consensus
// transform: the arithmetic mean of the axis-angle rotation vectors and the
// arithmetic mean of the translations.
//
// Averaging axis-angle vectors is not the geodesic mean on SO(3); it is only
// a good approximation when the rotations have small angular spread. The
// intended inputs are near-duplicate pose estimates. For anything wider use
// GeodesicMeanRotation.
func AverageExtrinsics(exts []*mat.Dense) (*mat.Dense, error) {
	if len(exts) == 0 {
		return nil, errors.New("cannot average zero transforms")
	}

	var rvSum, trSum r3.Vector
	for _, e := range exts {
		if rows, cols := e.Dims(); rows != 4 || cols != 4 {
			return nil, errors.Errorf("extrinsic matrix must be 4x4, got %dx%d", rows, cols)
		}
		rv, err := MatrixToRotationVector(rotationBlock(e))
		if err != nil {
			return nil, err
		}
		rvSum = rvSum.Add(rv)
		trSum = trSum.Add(r3.Vector{X: e.At(0, 3), Y: e.At(1, 3), Z: e.At(2, 3)})
	}

	n := float64(len(exts))
	r := RotationVectorToMatrix(rvSum.Mul(1 / n))
	tr := trSum.Mul(1 / n)

	return mat.NewDense(4, 4, []float64{
		r.At(0, 0), r.At(0, 1), r.At(0, 2), tr.X,
		r.At(1, 0), r.At(1, 1), r.At(1, 2), tr.Y,
		r.At(2, 0), r.At(2, 1), r.At(2, 2), tr.Z,
		0, 0, 0, 1,
	}), nil
}

// RelativeExtrinsics pairs up two transform lists and returns
// to[i] * inverse(from[i]) for each pair.
func RelativeExtrinsics(from, to []*mat.Dense) ([]*mat.Dense, error) {
	if len(from) != len(to) {
		return nil, vcamutils.NewShapeMismatchError("from vs to transforms", len(from), len(to))
	}
	out := make([]*mat.Dense, len(from))
	for i := range from {
		var inv, rel mat.Dense
		if err := inv.Inverse(from[i]); err != nil {
			return nil, errors.Wrapf(err, "cannot invert from[%d]", i)
		}
		rel.Mul(to[i], &inv)
		out[i] = &rel
	}
	return out, nil
}

// AverageRelativeExtrinsics computes the consensus transform between two
// matched lists of pose estimates.
func AverageRelativeExtrinsics(from, to []*mat.Dense) (*mat.Dense, error) {
	rels, err := RelativeExtrinsics(from, to)
	if err != nil {
		return nil, err
	}
	return AverageExtrinsics(rels)
}

const geodesicMaxIterations = 32
const geodesicToleranceDeg = 1e-9

// GeodesicMeanRotation iterates to the Riemannian mean of a batch of 3x3
// rotations. Unlike AverageExtrinsics it stays correct for wide angular
// spreads, at the cost of an iterative solve.
func GeodesicMeanRotation(rs []*mat.Dense) (*mat.Dense, error) {
	if len(rs) == 0 {
		return nil, errors.New("cannot average zero rotations")
	}

	mean := mat.DenseCopyOf(rs[0])
	for iter := 0; iter < geodesicMaxIterations; iter++ {
		var step r3.Vector
		for _, r := range rs {
			// rotation inverse is the transpose
			var delta mat.Dense
			delta.Mul(mean.T(), r)
			rv, err := MatrixToRotationVector(&delta)
			if err != nil {
				return nil, err
			}
			step = step.Add(rv)
		}
		step = step.Mul(1 / float64(len(rs)))
		if step.Norm() < geodesicToleranceDeg {
			break
		}
		var next mat.Dense
		next.Mul(mean, RotationVectorToMatrix(step))
		mean = mat.DenseCopyOf(&next)
	}
	return mean, nil
}
