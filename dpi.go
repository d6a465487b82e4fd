package winloop

import (
	"math"
)

type (
	// PhysicalPosition is a position in physical pixels.
	PhysicalPosition struct {
		X, Y float64
	}

	// LogicalPosition is a position in logical (scale independent) pixels.
	LogicalPosition struct {
		X, Y float64
	}

	// PhysicalSize is a size in physical pixels.
	PhysicalSize struct {
		Width, Height uint32
	}

	// LogicalSize is a size in logical (scale independent) pixels.
	LogicalSize struct {
		Width, Height float64
	}
)

// ValidScaleFactor reports whether f is usable as a scale factor: finite and
// strictly positive.
func ValidScaleFactor(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// ToLogical converts to logical pixels. It panics if scale is not valid.
func (x PhysicalPosition) ToLogical(scale float64) LogicalPosition {
	mustScaleFactor(scale)
	return LogicalPosition{X: x.X / scale, Y: x.Y / scale}
}

// ToPhysical converts to physical pixels. It panics if scale is not valid.
func (x LogicalPosition) ToPhysical(scale float64) PhysicalPosition {
	mustScaleFactor(scale)
	return PhysicalPosition{X: x.X * scale, Y: x.Y * scale}
}

// ToLogical converts to logical pixels. It panics if scale is not valid.
func (x PhysicalSize) ToLogical(scale float64) LogicalSize {
	mustScaleFactor(scale)
	return LogicalSize{Width: float64(x.Width) / scale, Height: float64(x.Height) / scale}
}

// ToPhysical converts to physical pixels, rounding to the nearest pixel. It
// panics if scale is not valid.
func (x LogicalSize) ToPhysical(scale float64) PhysicalSize {
	mustScaleFactor(scale)
	return PhysicalSize{Width: roundPixels(x.Width * scale), Height: roundPixels(x.Height * scale)}
}

func roundPixels(v float64) uint32 {
	switch {
	case !(v > 0):
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(math.Round(v))
	}
}

func mustScaleFactor(f float64) {
	if !ValidScaleFactor(f) {
		panic("winloop: invalid scale factor")
	}
}
