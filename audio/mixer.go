// SPDX-License-Identifier: EPL-2.0

package audio

import "github.com/ik5/ambientor/utils"

// Mixer is the master bus: it scales a frame of per-channel sums by the
// master gain and soft limits the result into [-1, 1]. It keeps no state
// beyond the gain, so a frame's output depends on that frame alone.
type Mixer struct {
	gain float64
}

func NewMixer(gain float64) Mixer {
	return Mixer{gain: gain}
}

func (m Mixer) Gain() float64 { return m.gain }

// Process writes len(frame) limited samples into dst.
// dst must be at least as long as frame.
func (m Mixer) Process(frame []float64, dst []float32) {
	dst = dst[:len(frame)]
	for c, x := range frame {
		dst[c] = float32(utils.SoftLimit(x * m.gain))
	}
}
