// Package imgutils resizes, crops and pads 8-bit images, and renders depth
// maps for viewing. Depth-map resampling under a camera model belongs to
// camutils.Remap, not here - these helpers have no geometric invariant.
package imgutils

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// CropMode picks how an image is brought to a target dimension.
type CropMode string

const (
	CropModePad    CropMode = "pad"
	CropModeCenter CropMode = "crop_c"
	CropModeNear   CropMode = "crop_n"
	CropModeFar    CropMode = "crop_f"
)

// FitSize scales size so the reference axis hits ref, then returns the gap
// needed to make the other axis a multiple of unit: positive for padding,
// negative for cropping.
func FitSize(size image.Point, ref, unit int, byWidth, withPadding bool) (image.Point, int) {
	refDim := size.X
	otherDim := size.Y
	if !byWidth {
		refDim = size.Y
		otherDim = size.X
	}

	rate := float64(ref) / float64(refDim)
	target := int(float64(otherDim)*rate + 0.5)

	gap := -(target % unit)
	if withPadding {
		gap = unit - (target % unit)
	}

	if byWidth {
		return image.Point{X: ref, Y: target}, gap
	}
	return image.Point{X: target, Y: ref}, gap
}

// AdjustSize crops or pads one axis of an image by gap pixels. Crop modes
// expect a negative gap, pad a positive one.
func AdjustSize(img image.Image, mode CropMode, gap int, alongWidth bool, fill color.Color) (image.Image, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch mode {
	case CropModeNear:
		if alongWidth {
			return imaging.Crop(img, image.Rect(0, 0, w+gap, h)), nil
		}
		return imaging.Crop(img, image.Rect(0, 0, w, h+gap)), nil
	case CropModeFar:
		if alongWidth {
			return imaging.Crop(img, image.Rect(-gap, 0, w, h)), nil
		}
		return imaging.Crop(img, image.Rect(0, -gap, w, h)), nil
	}

	amount := gap
	if amount < 0 {
		amount = -amount
	}
	st := amount / 2
	ed := amount - st

	switch mode {
	case CropModeCenter:
		if alongWidth {
			return imaging.Crop(img, image.Rect(st, 0, w-ed, h)), nil
		}
		return imaging.Crop(img, image.Rect(0, st, w, h-ed)), nil
	case CropModePad:
		var padded *image.NRGBA
		if alongWidth {
			padded = imaging.New(w+amount, h, fill)
			padded = imaging.Paste(padded, img, image.Point{X: st, Y: 0})
		} else {
			padded = imaging.New(w, h+amount, fill)
			padded = imaging.Paste(padded, img, image.Point{X: 0, Y: st})
		}
		return padded, nil
	}

	return nil, errors.Errorf("unknown crop mode %q", mode)
}

// ResizeWithGap resamples to size, then applies any leftover gap.
func ResizeWithGap(img image.Image, size image.Point, mode CropMode, gap int, alongWidth bool) (image.Image, error) {
	resized := imaging.Resize(img, size.X, size.Y, imaging.Linear)
	if gap == 0 {
		return resized, nil
	}
	return AdjustSize(resized, mode, gap, alongWidth, color.White)
}

// Resize scales an image so one axis hits ref and the other becomes a
// multiple of unit, padding or cropping per mode. Useful for model inputs
// with patch-size constraints.
func Resize(img image.Image, mode CropMode, ref, unit int, byWidth bool) (image.Image, error) {
	b := img.Bounds()
	size, gap := FitSize(image.Point{X: b.Dx(), Y: b.Dy()}, ref, unit, byWidth, mode == CropModePad)
	return ResizeWithGap(img, size, mode, gap, !byWidth)
}
