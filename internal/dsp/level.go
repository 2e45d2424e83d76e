// SPDX-License-Identifier: MIT
package dsp

import "math"

// RMS computes the root-mean-square level of buf. The caller must not pass
// an empty buffer: the audio subsystem never delivers empty callbacks, so
// this has no N=0 failure mode to report.
func RMS(buf []float32) float32 {
	if len(buf) == 0 {
		return 0
	}
	var sumSquares float64
	for _, f := range buf {
		sumSquares += float64(f) * float64(f)
	}
	return float32(math.Sqrt(sumSquares / float64(len(buf))))
}
