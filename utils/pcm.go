// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 quantizes a normalized sample to 16-bit PCM.
// Input is clamped to [-1, 1] and scaled by 32767 so the range is symmetric.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	return int16(x * math.MaxInt16)
}

// Float32ToBits returns the IEEE-754 bit pattern of x as a sign-extended
// int32 value, the form integer PCM containers carry 32-bit float data in.
func Float32ToBits(x float32) int {
	return int(int32(math.Float32bits(x)))
}
