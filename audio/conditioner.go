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

// ClampInterleave conditions one chunk of n frames for the encoding sink:
// each channel sample is clamped to [-1, 1] and the pair is interleaved
// into out as L0,R0,L1,R1... Stateless and identical for every target bit
// depth; integer conversion happens inside the sink, never here.
//
// out must hold at least 2*n samples.
func ClampInterleave(left, right, out []float32, n int) {
	for i := 0; i < n; i++ {
		out[i*2] = clampSample(left[i])
		out[i*2+1] = clampSample(right[i])
	}
}

func clampSample(v float32) float32 {
	if v > 1.0 {
		return 1.0
	}
	if v < -1.0 {
		return -1.0
	}
	return v
}
