// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"math"

	"github.com/ik5/ambientor/utils"
)

// Reverb tuning. Delay lengths are in samples at 48 kHz and scaled to the
// generator rate.
const (
	reverbRoom = 0.6
	reverbDamp = 0.4
)

var (
	reverbPreDelays  = [2]float64{641, 997}
	reverbPreGains   = [2]float64{0.72, 0.70}
	reverbCombDelays = [4]float64{7789, 8513, 9449, 10867}
	reverbPostDelays = [2]float64{579, 773}
	reverbPostGains  = [2]float64{0.65, 0.61}
)

type delayLine struct {
	buf []float64
	i   int
}

func newDelayLine(length int) delayLine {
	return delayLine{buf: make([]float64, max(length, 1))}
}

func (d *delayLine) read() float64 { return d.buf[d.i] }

func (d *delayLine) push(x float64) {
	d.buf[d.i] = x
	if d.i++; d.i == len(d.buf) {
		d.i = 0
	}
}

type allpass struct {
	d delayLine
	g float64
}

func (a *allpass) process(x float64) float64 {
	z := a.d.read()
	y := z - a.g*x
	a.d.push(x + a.g*y)

	return utils.KillDenormals(y)
}

// comb is a feedback comb with a one-pole lowpass in the loop for damping.
type comb struct {
	d    delayLine
	fb   float64
	damp onePole
}

func (c *comb) process(x float64) float64 {
	z := c.d.read()
	c.d.push(x + c.fb*c.damp.process(z))

	return utils.KillDenormals(z)
}

// reverb is a small mono Schroeder style reverb: two diffusing allpasses,
// four damped combs in parallel, then two more allpasses. Delay lines are
// allocated once when the layer is added.
type reverb struct {
	pre   [2]allpass
	combs [4]comb
	post  [2]allpass
	mix   float64
}

func scaledDelay(samples48k, sampleRate float64) int {
	return int(samples48k * sampleRate / 48000)
}

func newReverb(sampleRate, mix float64) *reverb {
	r := &reverb{mix: utils.Clamp(mix, 0, 1)}

	for i := range r.pre {
		r.pre[i] = allpass{d: newDelayLine(scaledDelay(reverbPreDelays[i], sampleRate)), g: reverbPreGains[i]}
	}
	for i := range r.post {
		r.post[i] = allpass{d: newDelayLine(scaledDelay(reverbPostDelays[i], sampleRate)), g: reverbPostGains[i]}
	}

	fb := 0.55 + 0.40*reverbRoom
	cutoff := 2000 + 12000*(1-reverbDamp)
	for i := range r.combs {
		r.combs[i] = comb{
			d:    newDelayLine(scaledDelay(reverbCombDelays[i], sampleRate)),
			fb:   fb,
			damp: newOnePole(math.Min(cutoff, 0.45*sampleRate), sampleRate),
		}
	}

	return r
}

// process returns the dry/wet blend for one sample.
func (r *reverb) process(x float64) float64 {
	pre := r.pre[1].process(r.pre[0].process(x))

	var sum float64
	for i := range r.combs {
		sum += r.combs[i].process(pre)
	}

	wet := r.post[1].process(r.post[0].process(0.25 * sum))

	return utils.KillDenormals((1-r.mix)*x + r.mix*wet)
}
