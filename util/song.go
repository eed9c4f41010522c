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
package util

import (
	"fmt"

	"tindrum/audio"
	"tindrum/model"
)

// LoadSong reads and validates a .yml song file.
func LoadSong(songPath string) (*model.Song, error) {
	song := &model.Song{}

	if err := ReadYamlFile(song, songPath); err != nil {
		return nil, fmt.Errorf("could not read song file %v: %w", songPath, err)
	}

	if err := song.Validate(); err != nil {
		return nil, fmt.Errorf("song file %v is not renderable: %w", songPath, err)
	}

	return song, nil
}

// SongFrames returns the total frame count a render of the song would
// produce at the given sample rate, summing the per-column frame counts
// with the same floor arithmetic the render loop uses.
func SongFrames(song *model.Song, sampleRate int) int {
	total := 0

	for column := range song.Timeline {
		ticksize := audio.TickSize(float64(sampleRate), song.BPMAt(column), song.Resolution)
		total += audio.FramesForTicks(ticksize, song.GroupTicks(column))
	}

	return total
}

// FormatDuration renders a length in seconds as hh:mm:ss.mmm.
func FormatDuration(duration float64) string {
	hours := 0
	minutes := 0

	if duration >= 3600 {
		hours = int(duration) / 3600
		duration -= float64(hours) * 3600.0
	}

	if duration >= 60 {
		minutes = int(duration) / 60
		duration -= float64(minutes) * 60
	}

	seconds := int(duration)
	duration -= float64(seconds)

	mseconds := int(duration * 1000)

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, mseconds)
}
