package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/golang/geo/r2"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"

	"github.com/erh/vcamutils"
	"github.com/erh/vcamutils/camutils"
	"github.com/erh/vcamutils/imgutils"
)

func main() {
	err := realMain()
	if err != nil {
		panic(err)
	}
}

func realMain() error {
	logger := logging.NewLogger("depthtools")
	ctx := context.Background()

	host := flag.String("host", "", "hostname")
	cmd := flag.String("cmd", "", "command")
	cameraName := flag.String("camera", "", "camera to use")
	in := flag.String("in", "", "input file")
	out := flag.String("out", "", "output file")

	width := flag.Int("width", 0, "target width")
	height := flag.Int("height", 0, "target height")

	fx := flag.Float64("fx", 0, "focal length x")
	fy := flag.Float64("fy", 0, "focal length y")
	ppx := flag.Float64("ppx", 0, "principal point x")
	ppy := flag.Float64("ppy", 0, "principal point y")

	showGround := flag.Bool("show-ground", false, "color invalid pixels too")

	flag.Parse()

	if *cmd == "" {
		return fmt.Errorf("need a cmd")
	}

	if *cmd == "remap" {
		dm, err := readDepthFile(*in)
		if err != nil {
			return err
		}
		if *width <= 0 || *height <= 0 {
			return fmt.Errorf("need a positive -width and -height")
		}

		k := camutils.ComposeIntrinsics(r2.Point{X: *fx, Y: *fy}, r2.Point{X: *ppx, Y: *ppy})
		remapped, err := camutils.Remap(dm, k, image.Point{X: *width, Y: *height})
		if err != nil {
			return err
		}

		return writePNGToFile(*out, remapped.ToGray16())
	}

	if *cmd == "topcd" {
		dm, err := readDepthFile(*in)
		if err != nil {
			return err
		}

		k := camutils.ComposeIntrinsics(r2.Point{X: *fx, Y: *fy}, r2.Point{X: *ppx, Y: *ppy})
		pc, err := camutils.ToPointCloud(dm, k)
		if err != nil {
			return err
		}

		logger.Infof("projected %d points", pc.Size())
		return writePCToFile(*out, pc)
	}

	if *cmd == "frompcd" {
		pc, err := pointcloud.NewFromFile(*in, "")
		if err != nil {
			return err
		}
		if *width <= 0 || *height <= 0 {
			return fmt.Errorf("need a positive -width and -height")
		}

		k := camutils.ComposeIntrinsics(r2.Point{X: *fx, Y: *fy}, r2.Point{X: *ppx, Y: *ppy})
		dm, err := camutils.DepthMapFromPointCloud(pc, k, image.Point{X: *width, Y: *height})
		if err != nil {
			return err
		}

		return writePNGToFile(*out, dm.ToGray16())
	}

	if *cmd == "viz" {
		dm, err := readDepthFile(*in)
		if err != nil {
			return err
		}
		return writePNGToFile(*out, imgutils.VisualizeDepth(dm, *showGround))
	}

	if *cmd == "download" {
		machine, err := vcamutils.ConnectToHostFromCLIToken(ctx, *host, logger)
		if err != nil {
			return err
		}
		defer machine.Close(ctx)

		intrinsics, err := vcamutils.CameraIntrinsicsFromMachine(ctx, machine, *cameraName)
		if err != nil {
			return err
		}
		logger.Infof("intrinsics: %#v", intrinsics)

		if *out == "" {
			return nil
		}

		cam, err := camera.FromRobot(machine, *cameraName)
		if err != nil {
			return err
		}

		pc, err := cam.NextPointCloud(ctx, nil)
		if err != nil {
			return err
		}

		return writePCToFile(*out, pc)
	}

	return fmt.Errorf("invalid command [%s]", *cmd)
}

func readDepthFile(fn string) (*camutils.DepthMap, error) {
	if fn == "" {
		return nil, fmt.Errorf("need an 'in'")
	}

	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	return camutils.NewDepthMapFromImage(img)
}

func writePNGToFile(fn string, img image.Image) error {
	if fn == "" {
		return fmt.Errorf("need an 'out'")
	}

	f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}

func writePCToFile(fn string, pc pointcloud.PointCloud) error {
	if fn == "" {
		return fmt.Errorf("need an 'out'")
	}

	f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return pointcloud.ToPCD(pc, f, pointcloud.PCDBinary)
}
