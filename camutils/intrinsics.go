package camutils

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/rdk/rimage/transform"

	"github.com/erh/vcamutils"
)

// Sizes are image.Point{X: width, Y: height}. Field of view is in radians,
// focal length and principal point in pixels, per axis.

func FocalLengthFromFov(fov r2.Point, size image.Point) r2.Point {
	return r2.Point{
		X: float64(size.X) / (2 * math.Tan(fov.X/2)),
		Y: float64(size.Y) / (2 * math.Tan(fov.Y/2)),
	}
}

func SizeFromFov(fov, focal r2.Point) image.Point {
	return image.Point{
		X: 2 * int(math.Round(math.Tan(fov.X/2)*focal.X)),
		Y: 2 * int(math.Round(math.Tan(fov.Y/2)*focal.Y)),
	}
}

// FovFromSize uses atan2 so a zero focal length still yields a defined angle.
func FovFromSize(size image.Point, focal r2.Point) r2.Point {
	return r2.Point{
		X: 2 * math.Atan2(float64(size.X)/2, focal.X),
		Y: 2 * math.Atan2(float64(size.Y)/2, focal.Y),
	}
}

func PrincipalPointFromRate(rate r2.Point, size image.Point) r2.Point {
	return r2.Point{X: rate.X * float64(size.X), Y: rate.Y * float64(size.Y)}
}

func PrincipalPointRate(pp r2.Point, size image.Point) r2.Point {
	return r2.Point{X: pp.X / float64(size.X), Y: pp.Y / float64(size.Y)}
}

// ComposeIntrinsics packs focal length and principal point into the pinhole matrix
// [[fx 0 ppx], [0 fy ppy], [0 0 1]].
func ComposeIntrinsics(focal, pp r2.Point) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		focal.X, 0, pp.X,
		0, focal.Y, pp.Y,
		0, 0, 1,
	})
}

func ComposeIntrinsicsBatch(focals, pps []r2.Point) ([]*mat.Dense, error) {
	if len(focals) != len(pps) {
		return nil, vcamutils.NewShapeMismatchError("focal lengths vs principal points", len(focals), len(pps))
	}
	out := make([]*mat.Dense, len(focals))
	for i := range focals {
		out[i] = ComposeIntrinsics(focals[i], pps[i])
	}
	return out, nil
}

func ExtractIntrinsics(k *mat.Dense) (r2.Point, r2.Point, error) {
	if r, c := k.Dims(); r != 3 || c != 3 {
		return r2.Point{}, r2.Point{}, errors.Errorf("intrinsic matrix must be 3x3, got %dx%d", r, c)
	}
	focal := r2.Point{X: k.At(0, 0), Y: k.At(1, 1)}
	pp := r2.Point{X: k.At(0, 2), Y: k.At(1, 2)}
	return focal, pp, nil
}

func ExtractIntrinsicsBatch(ks []*mat.Dense) ([]r2.Point, []r2.Point, error) {
	focals := make([]r2.Point, len(ks))
	pps := make([]r2.Point, len(ks))
	for i, k := range ks {
		var err error
		focals[i], pps[i], err = ExtractIntrinsics(k)
		if err != nil {
			return nil, nil, err
		}
	}
	return focals, pps, nil
}

// AdjustIntrinsics rescales an intrinsic matrix from one resolution to another
// while preserving the field of view and the relative principal point
// placement. Adjusting A->B->C gives the same matrix as A->C.
func AdjustIntrinsics(k *mat.Dense, size, newSize image.Point) (*mat.Dense, error) {
	focal, pp, err := ExtractIntrinsics(k)
	if err != nil {
		return nil, err
	}
	fov := FovFromSize(size, focal)
	rate := PrincipalPointRate(pp, size)

	return ComposeIntrinsics(
		FocalLengthFromFov(fov, newSize),
		PrincipalPointFromRate(rate, newSize),
	), nil
}

// ApplyIntrinsics multiplies each point by the 3x3 intrinsic matrix, or by
// its inverse when invert is set. One matrix per call, no batching.
func ApplyIntrinsics(pts []r3.Vector, k *mat.Dense, invert bool) ([]r3.Vector, error) {
	if r, c := k.Dims(); r != 3 || c != 3 {
		return nil, errors.Errorf("intrinsic matrix must be 3x3, got %dx%d", r, c)
	}
	m := k
	if invert {
		var inv mat.Dense
		if err := inv.Inverse(k); err != nil {
			return nil, errors.Wrap(err, "cannot invert intrinsic matrix")
		}
		m = &inv
	}
	out := make([]r3.Vector, len(pts))
	for i, p := range pts {
		out[i] = r3.Vector{
			X: m.At(0, 0)*p.X + m.At(0, 1)*p.Y + m.At(0, 2)*p.Z,
			Y: m.At(1, 0)*p.X + m.At(1, 1)*p.Y + m.At(1, 2)*p.Z,
			Z: m.At(2, 0)*p.X + m.At(2, 1)*p.Y + m.At(2, 2)*p.Z,
		}
	}
	return out, nil
}

// PinholeFromIntrinsics bridges a matrix to the rdk intrinsics struct.
func PinholeFromIntrinsics(k *mat.Dense, size image.Point) (*transform.PinholeCameraIntrinsics, error) {
	focal, pp, err := ExtractIntrinsics(k)
	if err != nil {
		return nil, err
	}
	return &transform.PinholeCameraIntrinsics{
		Width:  size.X,
		Height: size.Y,
		Fx:     focal.X,
		Fy:     focal.Y,
		Ppx:    pp.X,
		Ppy:    pp.Y,
	}, nil
}

func IntrinsicsFromPinhole(params *transform.PinholeCameraIntrinsics) *mat.Dense {
	return ComposeIntrinsics(
		r2.Point{X: params.Fx, Y: params.Fy},
		r2.Point{X: params.Ppx, Y: params.Ppy},
	)
}

// AdjustPinholeIntrinsics is AdjustIntrinsics for the rdk intrinsics struct,
// which carries its own resolution.
func AdjustPinholeIntrinsics(params *transform.PinholeCameraIntrinsics, width, height int) *transform.PinholeCameraIntrinsics {
	size := image.Point{X: params.Width, Y: params.Height}
	newSize := image.Point{X: width, Y: height}

	focal := r2.Point{X: params.Fx, Y: params.Fy}
	pp := r2.Point{X: params.Ppx, Y: params.Ppy}

	newFocal := FocalLengthFromFov(FovFromSize(size, focal), newSize)
	newPP := PrincipalPointFromRate(PrincipalPointRate(pp, size), newSize)

	return &transform.PinholeCameraIntrinsics{
		Width:  width,
		Height: height,
		Fx:     newFocal.X,
		Fy:     newFocal.Y,
		Ppx:    newPP.X,
		Ppy:    newPP.Y,
	}
}
