package winloop

import (
	"image"
	"math/bits"

	"golang.org/x/image/draw"
)

// Icon is a validated, immutable 32bpp RGBA image, used for window and
// taskbar icons. Construct it with [IconFromRGBA] or [IconFromImage].
type Icon struct {
	rgba   []byte
	width  uint32
	height uint32
}

// IconFromRGBA validates rgba as tightly packed 32bpp RGBA pixels of the
// given dimensions. The checks run in order: zero dimensions, byte count
// divisible by 4, width*height overflow, then pixel count mismatch. Any
// failure is a *[BadIconError].
//
// On success the icon takes ownership of rgba, which must not be modified
// afterwards.
func IconFromRGBA(rgba []byte, width, height uint32) (*Icon, error) {
	if width == 0 || height == 0 {
		return nil, &BadIconError{Kind: BadIconDimensionsZero, Width: width, Height: height}
	}

	if len(rgba)%4 != 0 {
		return nil, &BadIconError{Kind: BadIconByteCountNotDivisibleBy4, ByteCount: len(rgba)}
	}

	hi, expected := bits.Mul64(uint64(width), uint64(height))
	if hi != 0 || expected > uint64(maxInt) {
		return nil, &BadIconError{Kind: BadIconDimensionsMultiplyOverflow, Width: width, Height: height}
	}

	if actual := uint64(len(rgba) / 4); actual != expected {
		return nil, &BadIconError{
			Kind:     BadIconDimensionsVsPixelCount,
			Width:    width,
			Height:   height,
			Expected: expected,
			Actual:   actual,
		}
	}

	return &Icon{rgba: rgba, width: width, height: height}, nil
}

const maxInt = int(^uint(0) >> 1)

// IconFromImage converts img to a non-premultiplied RGBA icon.
func IconFromImage(img image.Image) (*Icon, error) {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return IconFromRGBA(dst.Pix, uint32(b.Dx()), uint32(b.Dy()))
}

// Size returns the icon dimensions, in pixels.
func (x *Icon) Size() (width, height uint32) { return x.width, x.height }

// RGBA returns a copy of the pixel buffer.
func (x *Icon) RGBA() []byte { return append([]byte(nil), x.rgba...) }

// Image returns the icon as an image, sharing no memory with the icon.
func (x *Icon) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    x.RGBA(),
		Stride: int(x.width) * 4,
		Rect:   image.Rect(0, 0, int(x.width), int(x.height)),
	}
}

// Scaled returns a copy of the icon resampled to the given dimensions, for
// backends that want several icon sizes. Dimensions are validated like
// [IconFromRGBA], before anything is allocated.
func (x *Icon) Scaled(width, height uint32) (*Icon, error) {
	if width == x.width && height == x.height {
		return &Icon{rgba: x.RGBA(), width: width, height: height}, nil
	}
	if width == 0 || height == 0 {
		return nil, &BadIconError{Kind: BadIconDimensionsZero, Width: width, Height: height}
	}
	// the resampled pixels must be addressable as a []byte
	if hi, n := bits.Mul64(uint64(width), uint64(height)); hi != 0 || n > uint64(maxInt/4) {
		return nil, &BadIconError{Kind: BadIconDimensionsMultiplyOverflow, Width: width, Height: height}
	}
	src := x.Image()
	dst := image.NewNRGBA(image.Rect(0, 0, int(width), int(height)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return IconFromRGBA(dst.Pix, width, height)
}
