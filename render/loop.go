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
package render

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"tindrum/audio"
	"tindrum/model"
)

// maxGeneratorRetries bounds the "not ready, ask again" loop on the pull
// callback so a wedged engine fails the render instead of spinning the
// worker forever.
const maxGeneratorRetries = 1 << 20

// renderTimeline walks the timeline column by column, chunk by chunk.
// Columns are rendered strictly in order; within a column chunks are
// written strictly in offset order, so the sink sees one monotonic
// stream. An empty column still renders its default length of whatever
// the generator produces; it is not skipped.
func (s *Session) renderTimeline(ctx context.Context, sink audio.Sink) error {
	totalColumns := len(s.song.Timeline)

	for column := 0; column < totalColumns; column++ {
		ticks := s.song.GroupTicks(column)

		// tempo can change at every column, so the tick size is
		// recomputed rather than hoisted out of the loop
		ticksize := audio.TickSize(float64(s.cfg.SampleRate), s.song.BPMAt(column), s.song.Resolution)
		columnFrames := audio.FramesForTicks(ticksize, ticks)

		slog.Debug("rendering timeline column",
			"session", s.id,
			"column", column,
			"ticks", ticks,
			"frames", columnFrames)

		rendered := 0
		for rendered < columnFrames {
			if err := ctx.Err(); err != nil {
				return err
			}

			chunk := s.cfg.BufferFrames
			if remaining := columnFrames - rendered; remaining < chunk {
				chunk = remaining
			}

			if err := s.pull(chunk); err != nil {
				return err
			}

			audio.ClampInterleave(s.left, s.right, s.interleaved, chunk)

			written, err := sink.WriteFrames(s.interleaved, chunk)
			if err != nil {
				return fmt.Errorf("writing %d frames at column %d: %w", chunk, column, err)
			}
			if written != chunk {
				if !s.cfg.BestEffort {
					return fmt.Errorf("%w: wrote %d of %d frames at column %d", ErrShortWrite, written, chunk, column)
				}
				slog.Error("short write to sink, continuing (best effort)",
					"session", s.id,
					"column", column,
					"requested", chunk,
					"written", written)
			}

			rendered += chunk
		}

		s.emit(model.Event{
			Kind:    model.EventProgress,
			Percent: progressPercent(column+1, totalColumns),
			Session: s.id,
		})
	}

	return nil
}

// pull asks the generator for one chunk, retrying while it signals "not
// ready". The retry is a cooperative spin: the scheduler gets a chance
// between attempts, and the bound turns a dead engine into an error.
func (s *Session) pull(frames int) error {
	left := s.left[:frames]
	right := s.right[:frames]

	for attempt := 0; ; attempt++ {
		if status := s.generator.Process(left, right); status == 0 {
			return nil
		}
		if attempt >= maxGeneratorRetries {
			return ErrGeneratorNeverReady
		}
		runtime.Gosched()
	}
}

func progressPercent(completed, total int) int {
	return int(math.Round(float64(completed) / float64(total) * 100.0))
}
