package imgutils

import (
	"testing"

	"go.viam.com/test"

	"github.com/erh/vcamutils/camutils"
)

func TestVisualizeDepthFlat(t *testing.T) {
	// uniform valid depth cannot normalize, renders flat gray
	dm := camutils.NewEmptyDepthMap(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			dm.Set(x, y, 5)
		}
	}
	img := VisualizeDepth(dm, false)
	test.That(t, ComputeGrayscaleAverage(img), test.ShouldAlmostEqual, 128, 1)

	// all-invalid map degenerates the same way
	img = VisualizeDepth(camutils.NewEmptyDepthMap(4, 4), false)
	test.That(t, ComputeGrayscaleAverage(img), test.ShouldAlmostEqual, 128, 1)
}

func TestVisualizeDepthRange(t *testing.T) {
	dm := camutils.NewEmptyDepthMap(3, 1)
	dm.Set(0, 0, 1)
	dm.Set(1, 0, 10)
	// pixel (2,0) stays invalid

	img := VisualizeDepth(dm, false)

	// invalid pixels are black
	r, g, b, _ := img.At(2, 0).RGBA()
	test.That(t, r+g+b, test.ShouldEqual, uint32(0))

	// the far pixel sits at the bright end of the colormap
	r, g, b, _ = img.At(1, 0).RGBA()
	test.That(t, r+g+b, test.ShouldBeGreaterThan, uint32(0x8000))
}

func TestVisualizeDepthThreshold(t *testing.T) {
	dm := camutils.NewEmptyDepthMap(3, 1)
	dm.Set(0, 0, 1)
	dm.Set(1, 0, 3)
	dm.Set(2, 0, 10)

	img := VisualizeDepthWithThreshold(dm, 0, 5, false)

	// 10 exceeds the threshold and renders as invalid
	r, g, b, _ := img.At(2, 0).RGBA()
	test.That(t, r+g+b, test.ShouldEqual, uint32(0))

	// 3 becomes the new maximum
	r, g, b, _ = img.At(1, 0).RGBA()
	test.That(t, r+g+b, test.ShouldBeGreaterThan, uint32(0x8000))
}

func TestComputeGrayscaleAverage(t *testing.T) {
	dm := camutils.NewEmptyDepthMap(2, 2)
	img := VisualizeDepth(dm, false)
	test.That(t, ComputeGrayscaleAverage(img), test.ShouldAlmostEqual, 128, 1)
}
