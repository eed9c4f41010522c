// =================================================================================
//
//			tindrum - offline drum machine renderer
//
//		 TinDrum is a CLI utility for rendering pattern-based arrangements
//	  straight to audio files on disk, without a realtime audio server
//
//			Copyright (c) 2025 the tindrum authors
//
//			Licensed under the Apache License, Version 2.0 (the "License");
//			you may not use this file except in compliance with the License.
//			You may obtain a copy of the License at
//
//			     http://www.apache.org/licenses/LICENSE-2.0
//
//			Unless required by applicable law or agreed to in writing, software
//			distributed under the License is distributed on an "AS IS" BASIS,
//			WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//			See the License for the specific language governing permissions and
//			limitations under the License.
//
// =================================================================================
package audio

import "math"

// TickSize returns the number of frames one tick lasts at the given tempo:
// sampleRate * 60 / (bpm * resolution), where resolution is ticks per
// beat. The result is fractional; callers must not round it before
// multiplying by a tick count. Recompute per timeline column, since tempo
// can change at any column.
func TickSize(sampleRate, bpm float64, resolution int) float64 {
	return sampleRate * 60.0 / (bpm * float64(resolution))
}

// FramesForTicks converts a length in ticks to whole frames. The product
// is truncated toward zero (floor for the non-negative values used here);
// rounding up instead would overrun the generator by a frame at column
// boundaries.
func FramesForTicks(ticksize float64, ticks int) int {
	return int(math.Floor(ticksize * float64(ticks)))
}
