package tween

import "math"

// Easing maps linear progress t in [0, 1] to eased progress. Curves should
// return 0 at t=0 and 1 at t=1; the driver pins both ends regardless.
type Easing func(t float64) float64

// Linear returns progress unchanged.
func Linear(t float64) float64 {
	return t
}

// OutExpo decelerates sharply. It is the default for show/hide and
// open/close transitions.
func OutExpo(t float64) float64 {
	if t >= 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*t)
}

// InExpo is the mirror of OutExpo.
func InExpo(t float64) float64 {
	if t <= 0 {
		return 0
	}
	return math.Pow(2, 10*(t-1))
}

// OutCubic decelerates gently. Used for swipe snapping.
func OutCubic(t float64) float64 {
	u := t - 1
	return u*u*u + 1
}

// Ease is equivalent to CSS ease.
var Ease = CubicBezier(0.25, 0.1, 0.25, 1.0)

// EaseIn is equivalent to CSS ease-in.
var EaseIn = CubicBezier(0.4, 0.0, 1.0, 1.0)

// EaseOut is equivalent to CSS ease-out.
var EaseOut = CubicBezier(0.0, 0.0, 0.2, 1.0)

// EaseInOut is equivalent to CSS ease-in-out.
var EaseInOut = CubicBezier(0.4, 0.0, 0.2, 1.0)

// ByName resolves a curve from configuration. Unknown names fall back to
// OutExpo.
func ByName(name string) Easing {
	switch name {
	case "linear":
		return Linear
	case "inExpo":
		return InExpo
	case "outCubic":
		return OutCubic
	case "ease":
		return Ease
	case "easeIn":
		return EaseIn
	case "easeOut":
		return EaseOut
	case "easeInOut":
		return EaseInOut
	default:
		return OutExpo
	}
}

// CubicBezier returns a curve matching CSS cubic-bezier(x1, y1, x2, y2).
func CubicBezier(x1, y1, x2, y2 float64) Easing {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		u := t
		// Newton-Raphson first, bisection if the slope flattens out.
		for range 8 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				return sampleCurve(y1, y2, clampUnit(u))
			}
			dx := sampleCurveDerivative(x1, x2, u)
			if math.Abs(dx) < 1e-7 {
				break
			}
			u -= x / dx
		}

		lo, hi := 0.0, 1.0
		u = clampUnit(u)
		for range 12 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) * 0.5
		}
		return sampleCurve(y1, y2, u)
	}
}

func sampleCurve(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func sampleCurveDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
