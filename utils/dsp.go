// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// LimiterKnee is the magnitude below which SoftLimit is the identity.
const LimiterKnee = 0.9

// denormalFloor is the magnitude under which filter memories are flushed to zero.
const denormalFloor = 1e-20

// CubicInterpolate performs cubic interpolation
// x is the fractional position between y1 and y2 (0 <= x <= 1)
// y0, y1, y2, y3 are four consecutive samples
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	// Catmull-Rom spline interpolation
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}

// SoftLimit bounds x to (-1, 1) without a hard corner.
//
// Values with |x| <= LimiterKnee pass through untouched. Above the knee the
// excess is fed through tanh, scaled to the remaining headroom, so the curve
// keeps a continuous slope and only approaches ±1 asymptotically.
func SoftLimit(x float64) float64 {
	ax := math.Abs(x)
	if ax <= LimiterKnee {
		return x
	}
	if math.IsNaN(x) {
		return 0
	}

	const headroom = 1 - LimiterKnee
	y := LimiterKnee + headroom*math.Tanh((ax-LimiterKnee)/headroom)

	return math.Copysign(y, x)
}

// PanGains returns the equal-power left/right gains for pan in [-1, 1]
// (-1 hard left, 0 center, 1 hard right). Out of range values are clamped.
func PanGains(pan float64) (left, right float64) {
	theta := (Clamp(pan, -1, 1) + 1) * 0.25 * math.Pi // [0, pi/2]

	return math.Cos(theta), math.Sin(theta)
}

// CentsToRatio converts a pitch offset in cents to a frequency ratio.
func CentsToRatio(cents float64) float64 {
	return math.Exp2(cents / 1200)
}

// OnePoleCoeff returns exp(-2*pi*fc/sr), the feedback term of a one-pole
// filter with cutoff fc. The cutoff is kept below Nyquist.
func OnePoleCoeff(cutoffHz, sampleRate float64) float64 {
	fc := Clamp(cutoffHz, 0, 0.499*sampleRate)

	return math.Exp(-2 * math.Pi * fc / sampleRate)
}

// SmoothingCoeff returns the one-pole feedback term for a time constant
// of ms milliseconds (the time to cover ~63% of a step).
func SmoothingCoeff(ms, sampleRate float64) float64 {
	if ms <= 0 {
		return 0
	}

	return math.Exp(-1 / (ms * 0.001 * sampleRate))
}

// TPTGain returns tan(pi*fc/sr), the integrator gain of a
// topology-preserving state-variable filter. The cutoff is kept inside
// (0, 0.49*sampleRate].
func TPTGain(cutoffHz, sampleRate float64) float64 {
	fc := Clamp(cutoffHz, 1e-6*sampleRate, 0.49*sampleRate)

	return math.Tan(math.Pi * fc / sampleRate)
}

// KillDenormals flushes tiny magnitudes to zero.
func KillDenormals(x float64) float64 {
	if math.Abs(x) < denormalFloor {
		return 0
	}

	return x
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}

	return x
}
