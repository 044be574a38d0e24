// Package camutils converts between pinhole camera models, depth maps and
// camera-space point sets.
package camutils

import (
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"

	"go.viam.com/rdk/rimage"

	"github.com/erh/vcamutils"
)

// DepthMap is a row-major grid of float64 depth values, one per pixel.
// A depth of exactly 0 means "no data" - NaN, infinities and negative
// values are normalized to 0 whenever a map is built.
type DepthMap struct {
	width  int
	height int

	data []float64
}

func NewEmptyDepthMap(width, height int) *DepthMap {
	return &DepthMap{
		width:  width,
		height: height,
		data:   make([]float64, width*height),
	}
}

// NewDepthMapFromData builds a depth map from row-major values,
// normalizing any invalid entries to 0.
func NewDepthMapFromData(width, height int, data []float64) (*DepthMap, error) {
	if len(data) != width*height {
		return nil, vcamutils.NewShapeMismatchError("depth data", len(data), width*height)
	}
	dm := NewEmptyDepthMap(width, height)
	for i, d := range data {
		dm.data[i] = normalizeDepth(d)
	}
	return dm, nil
}

func normalizeDepth(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}
	return d
}

func (dm *DepthMap) Width() int {
	return dm.width
}

func (dm *DepthMap) Height() int {
	return dm.height
}

func (dm *DepthMap) GetDepth(x, y int) float64 {
	return dm.data[y*dm.width+x]
}

func (dm *DepthMap) Set(x, y int, d float64) {
	dm.data[y*dm.width+x] = normalizeDepth(d)
}

func (dm *DepthMap) Clone() *DepthMap {
	out := NewEmptyDepthMap(dm.width, dm.height)
	copy(out.data, dm.data)
	return out
}

// MinMax returns the smallest and largest depth over valid pixels only.
// ok is false when the map has no valid pixel.
func (dm *DepthMap) MinMax() (float64, float64, bool) {
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, d := range dm.data {
		if d <= 0 {
			continue
		}
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	if max < min {
		return 0, 0, false
	}
	return min, max, true
}

func NewDepthMapFromRimage(src *rimage.DepthMap) *DepthMap {
	dm := NewEmptyDepthMap(src.Width(), src.Height())
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			dm.Set(x, y, float64(src.GetDepth(x, y)))
		}
	}
	return dm
}

// ToRimageDepthMap rounds to the nearest integer depth, clamping to the
// uint16 range rimage uses.
func (dm *DepthMap) ToRimageDepthMap() *rimage.DepthMap {
	out := rimage.NewEmptyDepthMap(dm.width, dm.height)
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			d := math.Round(dm.GetDepth(x, y))
			if d > math.MaxUint16 {
				d = math.MaxUint16
			}
			out.Set(x, y, rimage.Depth(d))
		}
	}
	return out
}

// NewDepthMapFromImage reads any image as 16-bit gray depth values.
func NewDepthMapFromImage(img image.Image) (*DepthMap, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	bounds := img.Bounds()
	dm := NewEmptyDepthMap(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			dm.Set(x-bounds.Min.X, y-bounds.Min.Y, float64(g.Y))
		}
	}
	return dm, nil
}

func (dm *DepthMap) ToGray16() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, dm.width, dm.height))
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			d := math.Round(dm.GetDepth(x, y))
			if d > math.MaxUint16 {
				d = math.MaxUint16
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(d)})
		}
	}
	return img
}

// PixelMask selects the pixels an operation should consider.
type PixelMask struct {
	width  int
	height int

	valid []bool
}

func NewPixelMask(width, height int) *PixelMask {
	return &PixelMask{
		width:  width,
		height: height,
		valid:  make([]bool, width*height),
	}
}

func (pm *PixelMask) Width() int {
	return pm.width
}

func (pm *PixelMask) Height() int {
	return pm.height
}

func (pm *PixelMask) Set(x, y int, valid bool) {
	pm.valid[y*pm.width+x] = valid
}

func (pm *PixelMask) Valid(x, y int) bool {
	return pm.valid[y*pm.width+x]
}
