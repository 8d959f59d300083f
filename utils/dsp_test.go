// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
		tolerance      float32
	}{
		{name: "start returns y1", y0: 0, y1: 1, y2: 2, y3: 3, x: 0, want: 1, tolerance: 0.001},
		{name: "end returns y2", y0: 0, y1: 1, y2: 2, y3: 3, x: 1, want: 2, tolerance: 0.001},
		{name: "linear data stays linear", y0: 1, y1: 2, y2: 3, y3: 4, x: 0.25, want: 2.25, tolerance: 0.01},
		{name: "zero crossing", y0: -1, y1: -0.5, y2: 0.5, y3: 1, x: 0.5, want: 0, tolerance: 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			diff := float32(math.Abs(float64(got - tt.want)))
			if diff > tt.tolerance {
				t.Errorf("CubicInterpolate() = %v, want %v (tolerance %v)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestSoftLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "zero", in: 0, want: 0},
		{name: "below knee", in: 0.5, want: 0.5},
		{name: "negative below knee", in: -0.75, want: -0.75},
		{name: "at knee", in: LimiterKnee, want: LimiterKnee},
		{name: "nan", in: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SoftLimit(tt.in); got != tt.want {
				t.Errorf("SoftLimit(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSoftLimit_Bounded(t *testing.T) {
	t.Parallel()

	for _, x := range []float64{0.95, 1, 1.5, 3, 10, 1e6, math.Inf(1)} {
		for _, v := range []float64{x, -x} {
			got := SoftLimit(v)
			if math.Abs(got) > 1 {
				t.Errorf("SoftLimit(%v) = %v, outside [-1, 1]", v, got)
			}
			if math.Abs(got) < LimiterKnee {
				t.Errorf("SoftLimit(%v) = %v, fell below the knee", v, got)
			}
			if math.Signbit(got) != math.Signbit(v) {
				t.Errorf("SoftLimit(%v) = %v, sign flipped", v, got)
			}
		}
	}
}

func TestSoftLimit_Monotonic(t *testing.T) {
	t.Parallel()

	prev := SoftLimit(-4)
	for x := -4.0; x <= 4.0; x += 0.001 {
		cur := SoftLimit(x)
		if cur < prev {
			t.Fatalf("SoftLimit not monotonic at %v: %v < %v", x, cur, prev)
		}
		prev = cur
	}
}

func TestSoftLimit_ContinuousAtKnee(t *testing.T) {
	t.Parallel()

	const eps = 1e-9
	below := SoftLimit(LimiterKnee - eps)
	above := SoftLimit(LimiterKnee + eps)
	if math.Abs(above-below) > 4*eps {
		t.Errorf("SoftLimit jumps at knee: %v -> %v", below, above)
	}
}

func TestPanGains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		pan         float64
		left, right float64
	}{
		{name: "hard left", pan: -1, left: 1, right: 0},
		{name: "center", pan: 0, left: math.Sqrt2 / 2, right: math.Sqrt2 / 2},
		{name: "hard right", pan: 1, left: 0, right: 1},
		{name: "clamped beyond right", pan: 3, left: 0, right: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l, r := PanGains(tt.pan)
			if math.Abs(l-tt.left) > 1e-9 || math.Abs(r-tt.right) > 1e-9 {
				t.Errorf("PanGains(%v) = (%v, %v), want (%v, %v)", tt.pan, l, r, tt.left, tt.right)
			}
		})
	}
}

func TestPanGains_EqualPower(t *testing.T) {
	t.Parallel()

	for p := -1.0; p <= 1.0; p += 0.05 {
		l, r := PanGains(p)
		if power := l*l + r*r; math.Abs(power-1) > 1e-9 {
			t.Errorf("PanGains(%v) power = %v, want 1", p, power)
		}
	}
}

func TestCentsToRatio(t *testing.T) {
	t.Parallel()

	if got := CentsToRatio(1200); math.Abs(got-2) > 1e-12 {
		t.Errorf("CentsToRatio(1200) = %v, want 2", got)
	}
	if got := CentsToRatio(0); got != 1 {
		t.Errorf("CentsToRatio(0) = %v, want 1", got)
	}
	if got := CentsToRatio(-1200); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("CentsToRatio(-1200) = %v, want 0.5", got)
	}
}

func TestOnePoleCoeff(t *testing.T) {
	t.Parallel()

	if got := OnePoleCoeff(0, 48000); got != 1 {
		t.Errorf("OnePoleCoeff(0) = %v, want 1", got)
	}

	a := OnePoleCoeff(1000, 48000)
	if a <= 0 || a >= 1 {
		t.Errorf("OnePoleCoeff(1000) = %v, want (0, 1)", a)
	}

	// Cutoffs above Nyquist are clamped rather than wrapping around.
	if OnePoleCoeff(1e9, 48000) != OnePoleCoeff(0.499*48000, 48000) {
		t.Error("OnePoleCoeff did not clamp cutoff to Nyquist")
	}
}

func TestKillDenormals(t *testing.T) {
	t.Parallel()

	if KillDenormals(1e-30) != 0 {
		t.Error("KillDenormals(1e-30) != 0")
	}
	if KillDenormals(0.5) != 0.5 {
		t.Error("KillDenormals(0.5) changed a normal value")
	}
}

func TestSoftLimit_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	allocs := testing.AllocsPerRun(1000, func() {
		_ = SoftLimit(1.7)
		_, _ = PanGains(0.3)
	})

	if allocs > 0 {
		t.Errorf("SoftLimit/PanGains allocated %v times, want 0", allocs)
	}
}

func BenchmarkSoftLimit(b *testing.B) {
	var result float64

	b.ReportAllocs()

	for i := range b.N {
		result = SoftLimit(float64(i%300) / 100)
	}

	_ = result
}
