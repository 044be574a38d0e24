package camutils

import (
	"image"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/rdk/pointcloud"

	"github.com/erh/vcamutils"
)

// BackProject emits one point per valid pixel with positive depth, in
// row-major scan order: (x*d, y*d, d). These are image-plane coordinates
// scaled by depth - apply the inverse intrinsic to get camera-space points.
// A nil mask selects every pixel.
func BackProject(dm *DepthMap, mask *PixelMask) ([]r3.Vector, error) {
	if mask != nil && (mask.Width() != dm.Width() || mask.Height() != dm.Height()) {
		return nil, vcamutils.NewShapeMismatchError("mask vs depth map pixels",
			mask.Width()*mask.Height(), dm.Width()*dm.Height())
	}

	pts := []r3.Vector{}
	for y := 0; y < dm.Height(); y++ {
		for x := 0; x < dm.Width(); x++ {
			if mask != nil && !mask.Valid(x, y) {
				continue
			}
			d := dm.GetDepth(x, y)
			if d <= 0 {
				continue
			}
			pts = append(pts, r3.Vector{X: float64(x) * d, Y: float64(y) * d, Z: d})
		}
	}
	return pts, nil
}

// ForwardProject renders image-plane points into a depth map of the given
// size. Points behind the camera (z <= 0) are dropped, out-of-bounds pixels
// are discarded, and when several points land on one pixel the nearest
// surface wins. The minimum is a true order-independent reduction, so input
// order never changes the result.
func ForwardProject(pts []r3.Vector, size image.Point) (*DepthMap, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, errors.Errorf("invalid depth map size (%d, %d)", size.X, size.Y)
	}

	flat := make([]float64, size.X*size.Y)
	for i := range flat {
		flat[i] = math.Inf(1)
	}

	for _, p := range pts {
		if p.Z <= 0 {
			continue
		}
		u := math.Round(p.X / p.Z)
		v := math.Round(p.Y / p.Z)
		if u < 0 || u >= float64(size.X) || v < 0 || v >= float64(size.Y) {
			continue
		}
		idx := int(v)*size.X + int(u)
		if p.Z < flat[idx] {
			flat[idx] = p.Z
		}
	}

	for i, d := range flat {
		if math.IsInf(d, 0) || math.IsNaN(d) || d < 0 {
			flat[i] = 0
		}
	}
	return NewDepthMapFromData(size.X, size.Y, flat)
}

// Remap resamples a depth map to a new resolution under a resolution-adjusted
// camera model: back-project at the old intrinsics, re-project at the new.
func Remap(dm *DepthMap, k *mat.Dense, newSize image.Point) (*DepthMap, error) {
	size := image.Point{X: dm.Width(), Y: dm.Height()}
	newK, err := AdjustIntrinsics(k, size, newSize)
	if err != nil {
		return nil, err
	}

	onImage, err := BackProject(dm, nil)
	if err != nil {
		return nil, err
	}

	onCamera, err := ApplyIntrinsics(onImage, k, true)
	if err != nil {
		return nil, err
	}

	reprojected, err := ApplyIntrinsics(onCamera, newK, false)
	if err != nil {
		return nil, err
	}

	return ForwardProject(reprojected, newSize)
}

// ToPointCloud back-projects a depth map through the intrinsics into a
// camera-space point cloud.
func ToPointCloud(dm *DepthMap, k *mat.Dense) (pointcloud.PointCloud, error) {
	onImage, err := BackProject(dm, nil)
	if err != nil {
		return nil, err
	}

	onCamera, err := ApplyIntrinsics(onImage, k, true)
	if err != nil {
		return nil, err
	}

	pc := pointcloud.NewBasicPointCloud(len(onCamera))
	for _, p := range onCamera {
		err = pc.Set(p, nil)
		if err != nil {
			return nil, err
		}
	}
	return pc, nil
}

// DepthMapFromPointCloud projects a camera-space point cloud into a depth
// map, applying the same nearest-surface occlusion policy as ForwardProject.
func DepthMapFromPointCloud(pc pointcloud.PointCloud, k *mat.Dense, size image.Point) (*DepthMap, error) {
	pts := make([]r3.Vector, 0, pc.Size())
	pc.Iterate(0, 0, func(p r3.Vector, d pointcloud.Data) bool {
		pts = append(pts, p)
		return true
	})

	onImage, err := ApplyIntrinsics(pts, k, false)
	if err != nil {
		return nil, err
	}
	return ForwardProject(onImage, size)
}
