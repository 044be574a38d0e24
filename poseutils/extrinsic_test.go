package poseutils

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

func TestComposeDecomposeExtrinsic(t *testing.T) {
	s := math.Sin(math.Pi / 4)
	q := quat.Number{Real: math.Cos(math.Pi / 4), Kmag: s}
	tr := r3.Vector{X: 1, Y: -2, Z: 3}

	e := ComposeExtrinsic(q, tr)
	test.That(t, e.At(3, 3), test.ShouldEqual, 1.0)
	test.That(t, e.At(0, 3), test.ShouldEqual, 1.0)

	q2, tr2, err := DecomposeExtrinsic(e)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tr2, test.ShouldResemble, tr)

	sign := 1.0
	if q2.Real*q.Real < 0 {
		sign = -1.0
	}
	test.That(t, sign*q2.Real, test.ShouldAlmostEqual, q.Real, 1e-9)
	test.That(t, sign*q2.Kmag, test.ShouldAlmostEqual, q.Kmag, 1e-9)
}

func TestDecomposeExtrinsicBadShape(t *testing.T) {
	_, _, err := DecomposeExtrinsic(mat.NewDense(3, 3, nil))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestComposeExtrinsicBatchMismatch(t *testing.T) {
	_, err := ComposeExtrinsicBatch(make([]quat.Number, 2), make([]r3.Vector, 3))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestExtrinsicBatchRoundTrip(t *testing.T) {
	qs := []quat.Number{{Real: 1}, {Real: math.Cos(math.Pi / 4), Kmag: math.Sin(math.Pi / 4)}}
	ts := []r3.Vector{{X: 1}, {Y: 2}}

	es, err := ComposeExtrinsicBatch(qs, ts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, es, test.ShouldHaveLength, 2)

	qs2, ts2, err := DecomposeExtrinsicBatch(es)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ts2, test.ShouldResemble, ts)
	test.That(t, qs2, test.ShouldHaveLength, 2)
}

func TestApplyExtrinsics(t *testing.T) {
	pts := []r3.Vector{{X: 1}, {Y: 1}, {Z: 1}}

	// identity, pure translation, 90 degrees about z
	identity := ComposeExtrinsic(quat.Number{Real: 1}, r3.Vector{})
	shift := ComposeExtrinsic(quat.Number{Real: 1}, r3.Vector{X: 10, Y: 20, Z: 30})
	s := math.Sin(math.Pi / 4)
	spin := ComposeExtrinsic(quat.Number{Real: math.Cos(math.Pi / 4), Kmag: s}, r3.Vector{})

	out, err := ApplyExtrinsics(pts, []*mat.Dense{identity, shift, spin}, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldHaveLength, 3)
	for _, set := range out {
		test.That(t, set, test.ShouldHaveLength, 3)
	}

	test.That(t, out[0][0].X, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, out[1][0].X, test.ShouldAlmostEqual, 11, 1e-9)
	test.That(t, out[1][0].Y, test.ShouldAlmostEqual, 20, 1e-9)

	// z rotation sends x to y
	test.That(t, out[2][0].X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, out[2][0].Y, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, out[2][2].Z, test.ShouldAlmostEqual, 1, 1e-9)
}

func TestApplyExtrinsicsInvertRoundTrip(t *testing.T) {
	pts := []r3.Vector{{X: 1, Y: 2, Z: 3}, {X: -4, Y: 5, Z: -6}}
	s := math.Sin(math.Pi / 6)
	e := ComposeExtrinsic(quat.Number{Real: math.Cos(math.Pi / 6), Imag: s}, r3.Vector{X: 7, Y: -8, Z: 9})

	fwd, err := ApplyExtrinsics(pts, []*mat.Dense{e}, false)
	test.That(t, err, test.ShouldBeNil)
	back, err := ApplyExtrinsics(fwd[0], []*mat.Dense{e}, true)
	test.That(t, err, test.ShouldBeNil)

	for i, p := range pts {
		test.That(t, back[0][i].X, test.ShouldAlmostEqual, p.X, 1e-9)
		test.That(t, back[0][i].Y, test.ShouldAlmostEqual, p.Y, 1e-9)
		test.That(t, back[0][i].Z, test.ShouldAlmostEqual, p.Z, 1e-9)
	}
}

func TestApplyExtrinsicsEmptyPoints(t *testing.T) {
	// an all-invalid depth map back-projects to zero points, which must flow
	// through transform application without crashing
	exts := []*mat.Dense{
		ComposeExtrinsic(quat.Number{Real: 1}, r3.Vector{}),
		ComposeExtrinsic(quat.Number{Real: 1}, r3.Vector{X: 1}),
	}

	out, err := ApplyExtrinsics([]r3.Vector{}, exts, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldHaveLength, 2)
	test.That(t, out[0], test.ShouldHaveLength, 0)
	test.That(t, out[1], test.ShouldHaveLength, 0)

	out, err = ApplyExtrinsics(nil, exts, true)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldHaveLength, 2)

	_, err = ApplyExtrinsics(nil, []*mat.Dense{mat.NewDense(3, 3, nil)}, false)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestApplyExtrinsicsHomogeneousBadShapes(t *testing.T) {
	_, err := ApplyExtrinsicsHomogeneous(mat.NewDense(2, 3, nil), nil, false)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = ApplyExtrinsicsHomogeneous(mat.NewDense(2, 4, nil), []*mat.Dense{mat.NewDense(3, 4, nil)}, false)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPoseBridge(t *testing.T) {
	s := math.Sin(math.Pi / 8)
	q := quat.Number{Real: math.Cos(math.Pi / 8), Jmag: s}
	e := ComposeExtrinsic(q, r3.Vector{X: 1, Y: 2, Z: 3})

	p, err := PoseFromExtrinsic(e)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Point().X, test.ShouldAlmostEqual, 1, 1e-9)

	back := ExtrinsicFromPose(p)
	matricesAlmostEqual(t, back, e, 1e-9)
}
