package game

import "strings"

// Orientation is the host device's interface orientation.
type Orientation string

const (
	OrientationPortrait           Orientation = "portrait"
	OrientationPortraitUpsideDown Orientation = "portrait_upside_down"
	OrientationLandscapeLeft      Orientation = "landscape_left"
	OrientationLandscapeRight     Orientation = "landscape_right"
)

// ParseOrientation accepts snake_case or camelCase names; anything else is portrait.
func ParseOrientation(s string) Orientation {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "")) {
	case "portraitupsidedown", "upsidedown":
		return OrientationPortraitUpsideDown
	case "landscapeleft":
		return OrientationLandscapeLeft
	case "landscaperight":
		return OrientationLandscapeRight
	default:
		return OrientationPortrait
	}
}

// remap maps the device gravity axes onto arena axes for the given orientation.
func remap(gx, gy float64, o Orientation) (float64, float64) {
	switch o {
	case OrientationPortraitUpsideDown:
		return -gx, gy
	case OrientationLandscapeLeft:
		return -gy, -gx
	case OrientationLandscapeRight:
		return gy, gx
	default:
		return gx, -gy
	}
}

// TiltAdapter turns raw gravity samples into the smoothed control vector the
// controller consumes. Its state persists across sessions.
type TiltAdapter struct {
	smoothed Vec2
	gain     float64
	alpha    float64
}

func NewTiltAdapter() *TiltAdapter {
	return &TiltAdapter{gain: TiltGain, alpha: TiltSmoothing}
}

// Sample folds one gravity reading into the smoothed vector and returns it.
func (a *TiltAdapter) Sample(gx, gy float64, o Orientation) Vec2 {
	ax, ay := remap(finite(gx), finite(gy), o)
	target := Vec2{X: clampUnit(ax * a.gain), Y: clampUnit(ay * a.gain)}
	a.smoothed = a.smoothed.Lerp(target, a.alpha)
	return a.smoothed
}
