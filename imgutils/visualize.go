package imgutils

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/plot/palette/moreland"

	"github.com/erh/vcamutils/camutils"
)

// VisualizeDepth renders a depth map with a perceptual colormap. Invalid
// pixels (depth 0) come out black unless showGround is set. A map whose
// valid depths are all equal renders flat gray - that degenerate
// normalization is a defined output, not an error.
func VisualizeDepth(dm *camutils.DepthMap, showGround bool) image.Image {
	return VisualizeDepthWithThreshold(dm, 0, math.Inf(1), showGround)
}

// VisualizeDepthWithThreshold treats depths outside [lo, hi] as invalid
// before rendering.
func VisualizeDepthWithThreshold(dm *camutils.DepthMap, lo, hi float64, showGround bool) image.Image {
	if hi < lo {
		lo, hi = hi, lo
	}

	clipped := dm.Clone()
	for y := 0; y < clipped.Height(); y++ {
		for x := 0; x < clipped.Width(); x++ {
			if d := clipped.GetDepth(x, y); d < lo || d > hi {
				clipped.Set(x, y, 0)
			}
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, clipped.Width(), clipped.Height()))

	min, max, ok := clipped.MinMax()
	if !ok || min == max {
		flat := color.Gray{Y: 128}
		for y := 0; y < clipped.Height(); y++ {
			for x := 0; x < clipped.Width(); x++ {
				img.Set(x, y, flat)
			}
		}
		return img
	}

	cm := moreland.Kindlmann()
	cm.SetMin(0)
	cm.SetMax(1)

	for y := 0; y < clipped.Height(); y++ {
		for x := 0; x < clipped.Width(); x++ {
			d := clipped.GetDepth(x, y)
			if d <= 0 && !showGround {
				img.Set(x, y, color.Black)
				continue
			}
			v := (d - min) / (max - min)
			if v < 0 {
				v = 0
			}
			c, err := cm.At(v)
			if err != nil {
				c = color.Black
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// ComputeGrayscaleAverage returns the mean gray level of an image.
func ComputeGrayscaleAverage(img image.Image) float64 {
	bounds := img.Bounds()

	totalValue := 0.0
	numPixels := 0.0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			grayColor := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			totalValue += float64(grayColor.Y)
			numPixels++
		}
	}

	return totalValue / numPixels
}
