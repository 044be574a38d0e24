// Package depthcam exposes a modular camera that republishes a source
// camera's depth output remapped to a different resolution, keeping the
// field of view and principal point placement consistent.
package depthcam

import (
	"context"
	"fmt"
	"image"
	"time"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/data"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/rimage"
	"go.viam.com/rdk/rimage/transform"
	"go.viam.com/rdk/spatialmath"

	"github.com/erh/vcamutils"
	"github.com/erh/vcamutils/camutils"
)

var RemapModel = vcamutils.NamespaceFamily.WithModel("depth-remap")

func init() {
	resource.RegisterComponent(
		camera.API,
		RemapModel,
		resource.Registration[camera.Camera, *RemapConfig]{
			Constructor: newRemapCamera,
		})
}

type RemapConfig struct {
	Src    string
	Width  int
	Height int
}

func (c *RemapConfig) Validate(path string) ([]string, []string, error) {
	if c.Src == "" {
		return nil, nil, fmt.Errorf("need a src camera")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return nil, nil, fmt.Errorf("need a positive width and height, got (%d, %d)", c.Width, c.Height)
	}
	return []string{c.Src}, nil, nil
}

func newRemapCamera(ctx context.Context, deps resource.Dependencies, config resource.Config, logger logging.Logger) (camera.Camera, error) {
	newConf, err := resource.NativeConfig[*RemapConfig](config)
	if err != nil {
		return nil, err
	}

	rc := &remapCamera{
		name:   config.ResourceName(),
		cfg:    newConf,
		logger: logger,
	}

	rc.src, err = camera.FromProvider(deps, newConf.Src)
	if err != nil {
		return nil, err
	}

	return rc, nil
}

type remapCamera struct {
	resource.AlwaysRebuild
	resource.TriviallyCloseable

	name   resource.Name
	cfg    *RemapConfig
	logger logging.Logger

	src camera.Camera
}

func (rc *remapCamera) Name() resource.Name {
	return rc.name
}

func (rc *remapCamera) targetSize() image.Point {
	return image.Point{X: rc.cfg.Width, Y: rc.cfg.Height}
}

// srcDepthAndIntrinsics grabs the source depth frame and the intrinsics it
// was captured with.
func (rc *remapCamera) srcDepthAndIntrinsics(ctx context.Context, extra map[string]interface{}) (*camutils.DepthMap, *transform.PinholeCameraIntrinsics, error) {
	props, err := rc.src.Properties(ctx)
	if err != nil {
		return nil, nil, err
	}
	if props.IntrinsicParams == nil {
		return nil, nil, fmt.Errorf("src camera %s has no intrinsics", rc.cfg.Src)
	}

	imgs, _, err := rc.src.Images(ctx, nil, extra)
	if err != nil {
		return nil, nil, err
	}

	for _, ni := range imgs {
		img, err := ni.Image(ctx)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := img.(*image.Gray16); !ok {
			continue
		}
		dm, err := camutils.NewDepthMapFromImage(img)
		if err != nil {
			return nil, nil, err
		}
		if dm.Width() != props.IntrinsicParams.Width || dm.Height() != props.IntrinsicParams.Height {
			return nil, nil, fmt.Errorf("depth image (%d,%d) does not match intrinsics (%d,%d)",
				dm.Width(), dm.Height(), props.IntrinsicParams.Width, props.IntrinsicParams.Height)
		}
		return dm, props.IntrinsicParams, nil
	}

	return nil, nil, fmt.Errorf("src camera %s produced no 16-bit depth image", rc.cfg.Src)
}

func (rc *remapCamera) remapped(ctx context.Context, extra map[string]interface{}) (*camutils.DepthMap, *transform.PinholeCameraIntrinsics, error) {
	start := time.Now()

	dm, intrinsics, err := rc.srcDepthAndIntrinsics(ctx, extra)
	if err != nil {
		return nil, nil, err
	}

	out, err := camutils.Remap(dm, camutils.IntrinsicsFromPinhole(intrinsics), rc.targetSize())
	if err != nil {
		return nil, nil, err
	}

	if elapsed := time.Since(start); elapsed > (time.Millisecond * 250) {
		rc.logger.Infof("remapCamera remap took %v", elapsed)
	}

	return out, camutils.AdjustPinholeIntrinsics(intrinsics, rc.cfg.Width, rc.cfg.Height), nil
}

func (rc *remapCamera) Image(ctx context.Context, mimeType string, extra map[string]interface{}) ([]byte, camera.ImageMetadata, error) {
	dm, _, err := rc.remapped(ctx, extra)
	if err != nil {
		return nil, camera.ImageMetadata{}, err
	}

	data, err := rimage.EncodeImage(ctx, dm.ToGray16(), mimeType)
	if err != nil {
		return nil, camera.ImageMetadata{}, err
	}

	return data, camera.ImageMetadata{MimeType: mimeType}, nil
}

func (rc *remapCamera) Images(ctx context.Context, filterSourceNames []string, extra map[string]interface{}) ([]camera.NamedImage, resource.ResponseMetadata, error) {
	dm, _, err := rc.remapped(ctx, extra)
	if err != nil {
		return nil, resource.ResponseMetadata{}, err
	}

	ni, err := camera.NamedImageFromImage(dm.ToGray16(), "depth", "image/png", data.Annotations{})
	if err != nil {
		return nil, resource.ResponseMetadata{}, err
	}
	return []camera.NamedImage{ni}, resource.ResponseMetadata{CapturedAt: time.Now()}, nil
}

func (rc *remapCamera) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	return nil, nil
}

func (rc *remapCamera) NextPointCloud(ctx context.Context, extra map[string]interface{}) (pointcloud.PointCloud, error) {
	dm, intrinsics, err := rc.remapped(ctx, extra)
	if err != nil {
		return nil, err
	}
	return camutils.ToPointCloud(dm, camutils.IntrinsicsFromPinhole(intrinsics))
}

func (rc *remapCamera) Properties(ctx context.Context) (camera.Properties, error) {
	props, err := rc.src.Properties(ctx)
	if err != nil {
		return camera.Properties{}, err
	}

	out := camera.Properties{
		SupportsPCD: true,
	}
	if props.IntrinsicParams != nil {
		out.IntrinsicParams = camutils.AdjustPinholeIntrinsics(props.IntrinsicParams, rc.cfg.Width, rc.cfg.Height)
	}
	return out, nil
}

func (rc *remapCamera) Geometries(ctx context.Context, _ map[string]interface{}) ([]spatialmath.Geometry, error) {
	return nil, nil
}
