package poseutils

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/rdk/spatialmath"

	"github.com/erh/vcamutils"
	"github.com/erh/vcamutils/ptutils"
)

// ComposeExtrinsic packs a rotation quaternion and a translation into a 4x4
// homogeneous rigid transform.
func ComposeExtrinsic(q quat.Number, t r3.Vector) *mat.Dense {
	r := QuaternionToMatrix(q)
	return mat.NewDense(4, 4, []float64{
		r.At(0, 0), r.At(0, 1), r.At(0, 2), t.X,
		r.At(1, 0), r.At(1, 1), r.At(1, 2), t.Y,
		r.At(2, 0), r.At(2, 1), r.At(2, 2), t.Z,
		0, 0, 0, 1,
	})
}

func ComposeExtrinsicBatch(qs []quat.Number, ts []r3.Vector) ([]*mat.Dense, error) {
	if len(qs) != len(ts) {
		return nil, vcamutils.NewShapeMismatchError("quaternions vs translations", len(qs), len(ts))
	}
	out := make([]*mat.Dense, len(qs))
	for i := range qs {
		out[i] = ComposeExtrinsic(qs[i], ts[i])
	}
	return out, nil
}

// DecomposeExtrinsic splits a 4x4 rigid transform back into quaternion and
// translation. The returned quaternion is only defined up to sign.
func DecomposeExtrinsic(e *mat.Dense) (quat.Number, r3.Vector, error) {
	if rows, cols := e.Dims(); rows != 4 || cols != 4 {
		return quat.Number{}, r3.Vector{}, errors.Errorf("extrinsic matrix must be 4x4, got %dx%d", rows, cols)
	}
	q, err := MatrixToQuaternion(rotationBlock(e))
	if err != nil {
		return quat.Number{}, r3.Vector{}, err
	}
	t := r3.Vector{X: e.At(0, 3), Y: e.At(1, 3), Z: e.At(2, 3)}
	return q, t, nil
}

func DecomposeExtrinsicBatch(es []*mat.Dense) ([]quat.Number, []r3.Vector, error) {
	qs := make([]quat.Number, len(es))
	ts := make([]r3.Vector, len(es))
	for i, e := range es {
		var err error
		qs[i], ts[i], err = DecomposeExtrinsic(e)
		if err != nil {
			return nil, nil, err
		}
	}
	return qs, ts, nil
}

func rotationBlock(e *mat.Dense) *mat.Dense {
	r := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.Set(i, j, e.At(i, j))
		}
	}
	return r
}

// PoseFromExtrinsic bridges a 4x4 transform to a spatialmath.Pose.
func PoseFromExtrinsic(e *mat.Dense) (spatialmath.Pose, error) {
	q, t, err := DecomposeExtrinsic(e)
	if err != nil {
		return nil, err
	}
	o := spatialmath.Quaternion(q)
	return spatialmath.NewPose(t, &o), nil
}

func ExtrinsicFromPose(p spatialmath.Pose) *mat.Dense {
	return ComposeExtrinsic(p.Orientation().Quaternion(), p.Point())
}

// ApplyExtrinsics applies every transform in the batch to every point,
// producing one point set per transform. With invert set, the inverses are
// applied instead. An empty point set is valid input and yields one empty
// set per transform.
func ApplyExtrinsics(pts []r3.Vector, exts []*mat.Dense, invert bool) ([][]r3.Vector, error) {
	if len(pts) == 0 {
		out := make([][]r3.Vector, len(exts))
		for i, e := range exts {
			if rows, cols := e.Dims(); rows != 4 || cols != 4 {
				return nil, errors.Errorf("extrinsic matrix must be 4x4, got %dx%d", rows, cols)
			}
			out[i] = []r3.Vector{}
		}
		return out, nil
	}

	hom, err := ptutils.ToHomogeneous(pts)
	if err != nil {
		return nil, err
	}
	res, err := ApplyExtrinsicsHomogeneous(hom, exts, invert)
	if err != nil {
		return nil, err
	}
	out := make([][]r3.Vector, len(res))
	for i, m := range res {
		out[i], err = ptutils.FromHomogeneous(m)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ApplyExtrinsicsHomogeneous is ApplyExtrinsics for point sets already in
// N x 4 homogeneous row form; the rows pass through each transform unchanged
// in representation.
func ApplyExtrinsicsHomogeneous(pts *mat.Dense, exts []*mat.Dense, invert bool) ([]*mat.Dense, error) {
	if _, cols := pts.Dims(); cols != 4 {
		return nil, vcamutils.NewShapeMismatchError("homogeneous point columns", cols, 4)
	}

	out := make([]*mat.Dense, len(exts))
	for i, e := range exts {
		if rows, cols := e.Dims(); rows != 4 || cols != 4 {
			return nil, errors.Errorf("extrinsic matrix must be 4x4, got %dx%d", rows, cols)
		}
		m := e
		if invert {
			var inv mat.Dense
			if err := inv.Inverse(e); err != nil {
				return nil, errors.Wrap(err, "cannot invert extrinsic matrix")
			}
			m = &inv
		}
		var res mat.Dense
		res.Mul(pts, m.T())
		out[i] = &res
	}
	return out, nil
}
