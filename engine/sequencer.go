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
package engine

import (
	"math"
	"sort"

	"tindrum/audio"
	"tindrum/model"
)

const (
	voiceDecay    = 0.9996 // per-frame level decay, ~60dB in a quarter second at 48k
	voiceCutoff   = 1e-4   // below this a voice is culled
	defaultLevel  = 0.8
	twoPi         = 2 * math.Pi
	concertPitchA = 440.0
)

type onset struct {
	frame    int
	key      int
	velocity float64
}

type voice struct {
	phase float64
	step  float64 // phase increment per frame
	level float64
}

// Sequencer is the built-in pull generator: a deterministic synth that
// walks the song's timeline with the same tick arithmetic as the render
// loop and plays a decaying sine voice for every pattern note. Two
// sequencers built from the same song produce identical sample streams.
//
// All note onsets are resolved to absolute frame positions up front, so
// Process is a pure function of the construction inputs and the running
// frame counter.
type Sequencer struct {
	sampleRate int
	onsets     []onset
	next       int
	frame      int
	voices     []voice
}

func NewSequencer(song *model.Song, sampleRate int) *Sequencer {
	s := &Sequencer{sampleRate: sampleRate}

	columnStart := 0
	for column := range song.Timeline {
		ticksize := audio.TickSize(float64(sampleRate), song.BPMAt(column), song.Resolution)

		for _, name := range song.Timeline[column].Patterns {
			pattern := song.Pattern(name)
			if pattern == nil {
				continue
			}
			for _, note := range pattern.Notes {
				velocity := note.Velocity
				if velocity <= 0 {
					velocity = defaultLevel
				}
				s.onsets = append(s.onsets, onset{
					frame:    columnStart + audio.FramesForTicks(ticksize, note.Tick),
					key:      note.Key,
					velocity: velocity,
				})
			}
		}

		columnStart += audio.FramesForTicks(ticksize, song.GroupTicks(column))
	}

	sort.SliceStable(s.onsets, func(i, j int) bool { return s.onsets[i].frame < s.onsets[j].frame })

	return s
}

// OnsetCount returns the number of note onsets scheduled over the whole
// timeline.
func (s *Sequencer) OnsetCount() int { return len(s.onsets) }

// Process fills one chunk of both channel buffers and advances the
// sequencer clock by len(left) frames. Always ready, so the status is
// always 0.
func (s *Sequencer) Process(left, right []float32) int {
	for i := range left {
		current := s.frame + i
		for s.next < len(s.onsets) && s.onsets[s.next].frame <= current {
			s.trigger(s.onsets[s.next])
			s.next++
		}

		sample := s.mix()
		left[i] = sample
		right[i] = sample
	}

	s.frame += len(left)
	return 0
}

func (s *Sequencer) trigger(o onset) {
	freq := concertPitchA * math.Pow(2, float64(o.key-69)/12.0)
	s.voices = append(s.voices, voice{
		step:  twoPi * freq / float64(s.sampleRate),
		level: o.velocity,
	})
}

func (s *Sequencer) mix() float32 {
	var sum float64

	alive := s.voices[:0]
	for i := range s.voices {
		v := &s.voices[i]
		sum += math.Sin(v.phase) * v.level
		v.phase += v.step
		if v.phase > twoPi {
			v.phase -= twoPi
		}
		v.level *= voiceDecay
		if v.level > voiceCutoff {
			alive = append(alive, *v)
		}
	}
	s.voices = alive

	return float32(sum)
}
