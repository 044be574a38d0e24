package depthcam

import (
	"context"
	"testing"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/data"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/rimage/transform"
	"go.viam.com/test"

	"github.com/erh/vcamutils/camutils"
)

func TestRemapConfigValidate(t *testing.T) {
	cfg := &RemapConfig{}
	_, _, err := cfg.Validate("")
	test.That(t, err, test.ShouldNotBeNil)

	cfg = &RemapConfig{Src: "d", Width: 0, Height: 10}
	_, _, err = cfg.Validate("")
	test.That(t, err, test.ShouldNotBeNil)

	cfg = &RemapConfig{Src: "d", Width: 8, Height: 6}
	deps, _, err := cfg.Validate("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"d"})
}

type fakeDepthSource struct {
	camera.Camera
	props camera.Properties
	imgs  []camera.NamedImage
}

func (f *fakeDepthSource) Properties(ctx context.Context) (camera.Properties, error) {
	return f.props, nil
}

func (f *fakeDepthSource) Images(ctx context.Context, _ []string, _ map[string]interface{}) ([]camera.NamedImage, resource.ResponseMetadata, error) {
	return f.imgs, resource.ResponseMetadata{}, nil
}

func testSource(t *testing.T) *fakeDepthSource {
	t.Helper()

	dm := camutils.NewEmptyDepthMap(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			dm.Set(x, y, float64(100+10*x+y))
		}
	}

	ni, err := camera.NamedImageFromImage(dm.ToGray16(), "depth", "image/png", data.Annotations{})
	test.That(t, err, test.ShouldBeNil)

	return &fakeDepthSource{
		props: camera.Properties{
			IntrinsicParams: &transform.PinholeCameraIntrinsics{
				Width: 4, Height: 4, Fx: 2, Fy: 2, Ppx: 2, Ppy: 2,
			},
		},
		imgs: []camera.NamedImage{ni},
	}
}

func TestRemapCamera(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)

	rc := &remapCamera{
		cfg:    &RemapConfig{Src: "d", Width: 8, Height: 8},
		logger: logger,
		src:    testSource(t),
	}

	dm, intrinsics, err := rc.remapped(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dm.Width(), test.ShouldEqual, 8)
	test.That(t, dm.Height(), test.ShouldEqual, 8)
	test.That(t, intrinsics.Width, test.ShouldEqual, 8)
	test.That(t, intrinsics.Fx, test.ShouldAlmostEqual, 4, 1e-9)

	// upscaling preserves each source depth at the doubled pixel
	test.That(t, dm.GetDepth(0, 0), test.ShouldAlmostEqual, 100, 1e-9)
	test.That(t, dm.GetDepth(2, 2), test.ShouldAlmostEqual, 111, 1e-9)

	props, err := rc.Properties(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, props.SupportsPCD, test.ShouldBeTrue)
	test.That(t, props.IntrinsicParams.Height, test.ShouldEqual, 8)

	pc, err := rc.NextPointCloud(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldBeGreaterThan, 0)
}

func TestRemapCameraNoIntrinsics(t *testing.T) {
	src := testSource(t)
	src.props.IntrinsicParams = nil

	rc := &remapCamera{
		cfg:    &RemapConfig{Src: "d", Width: 8, Height: 8},
		logger: logging.NewTestLogger(t),
		src:    src,
	}

	_, _, err := rc.remapped(context.Background(), nil)
	test.That(t, err, test.ShouldNotBeNil)
}
