// Package poseutils builds, splits, averages and applies rigid transforms
// stored as 4x4 homogeneous matrices.
package poseutils

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/rdk/spatialmath"
)

const radToDeg = 180 / math.Pi
const degToRad = math.Pi / 180

// Rotation representation changes go through spatialmath. Quaternions are
// scalar-first (w, x, y, z) and rotation vectors are axis-angle vectors in
// degrees. The rotation block of every input must already be a member of
// SO(3) - callers passing a non-rotation get garbage, not a correction.

func MatrixToQuaternion(r *mat.Dense) (quat.Number, error) {
	if rows, cols := r.Dims(); rows != 3 || cols != 3 {
		return quat.Number{}, errors.Errorf("rotation matrix must be 3x3, got %dx%d", rows, cols)
	}
	rm, err := spatialmath.NewRotationMatrix(mat.DenseCopyOf(r).RawMatrix().Data)
	if err != nil {
		return quat.Number{}, err
	}
	return rm.Quaternion(), nil
}

func QuaternionToMatrix(q quat.Number) *mat.Dense {
	rm := spatialmath.QuatToRotationMatrix(q)
	out := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, rm.At(i, j))
		}
	}
	return out
}

func MatrixToRotationVector(r *mat.Dense) (r3.Vector, error) {
	q, err := MatrixToQuaternion(r)
	if err != nil {
		return r3.Vector{}, err
	}
	return spatialmath.QuatToR4AA(q).ToR3().Mul(radToDeg), nil
}

func RotationVectorToMatrix(v r3.Vector) *mat.Dense {
	rads := v.Mul(degToRad)
	norm := rads.Norm()
	if norm == 0 {
		return identityRotation()
	}
	// spatialmath.R3ToR4 reserves the exact vector {1,0,0} as a no-rotation
	// marker, which is a legitimate input here (1 radian about x). Build the
	// axis-angle form directly instead.
	axis := rads.Mul(1 / norm)
	aa := spatialmath.R4AA{Theta: norm, RX: axis.X, RY: axis.Y, RZ: axis.Z}
	return QuaternionToMatrix(aa.ToQuat())
}

func identityRotation() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}
