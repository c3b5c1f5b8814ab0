// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 clamps x to [-1, 1] and scales it to the signed 16-bit
// range, rounding to the nearest integer. Negative values scale by 32768 and
// positive ones by 32767 so both ends of the range are reachable.
func Float32ToInt16(x float32) int16 {
	if x != x { // NaN
		return 0
	}

	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	if x < 0 {
		return int16(math.Round(float64(x) * 32768.0))
	}

	return int16(math.Round(float64(x) * 32767.0))
}

// Int16ToFloat32 is the inverse of Float32ToInt16 up to quantisation error.
func Int16ToFloat32(v int16) float32 {
	if v < 0 {
		return float32(v) / 32768.0
	}

	return float32(v) / 32767.0
}

// IntToFloat32 normalises a signed integer sample of the given bit depth.
// 16-bit values use the same asymmetric scale as Float32ToInt16.
func IntToFloat32(v int, bitDepth int) float32 {
	switch bitDepth {
	case 16:
		return Int16ToFloat32(int16(v))
	case 8:
		return float32(v) / 128.0
	case 24:
		return float32(v) / 8388608.0
	case 32:
		return float32(v) / 2147483648.0
	default:
		return float32(v) / 32768.0
	}
}
