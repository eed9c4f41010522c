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
package model

import (
	"fmt"
	"slices"
)

// bit depths the encoders understand
var validBitDepths = []int{8, 16, 24, 32}

// RenderConfig is the immutable value set for one render pass. It is
// validated once before any work starts; a session never mutates it.
type RenderConfig struct {
	OutputPath   string `yaml:"output_path,omitempty"`
	SampleRate   int    `yaml:"sample_rate,omitempty"`
	BitDepth     int    `yaml:"bit_depth,omitempty"`
	BufferFrames int    `yaml:"buffer_frames,omitempty"`

	// BestEffort restores the legacy behavior of logging short sink
	// writes and carrying on. The default is strict: a short write
	// aborts the render.
	BestEffort bool `yaml:"best_effort,omitempty"`
}

func (c *RenderConfig) Validate() error {
	if c.OutputPath == "" {
		return fmt.Errorf("output path is empty")
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be > 0, got %d", c.SampleRate)
	}
	if c.BufferFrames <= 0 {
		return fmt.Errorf("buffer size must be > 0 frames, got %d", c.BufferFrames)
	}
	if !slices.Contains(validBitDepths, c.BitDepth) {
		return fmt.Errorf("bit depth must be one of %v, got %d", validBitDepths, c.BitDepth)
	}

	return nil
}
