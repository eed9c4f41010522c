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
	"sort"
)

// DefaultGroupTicks is the length assigned to a timeline column that
// triggers no patterns. An empty column still rolls for a full bar; it is
// rendered, not skipped.
const DefaultGroupTicks = 192

type (
	// Song is the complete arrangement as loaded from a .yml song file:
	// a pattern library, a timeline of pattern groups and the tempo
	// information needed to turn ticks into frames. Resolution is the
	// number of ticks per beat.
	Song struct {
		Name       string         `yaml:"name,omitempty"`
		Author     string         `yaml:"author,omitempty"`
		BPM        float64        `yaml:"bpm"`
		Resolution int            `yaml:"resolution"`
		Patterns   []Pattern      `yaml:"patterns"`
		Timeline   []PatternGroup `yaml:"timeline"`
		Tempo      []TempoMarker  `yaml:"tempo,omitempty"`
	}

	// Pattern is a named sequence of note onsets with a length in ticks.
	Pattern struct {
		Name  string `yaml:"name"`
		Ticks int    `yaml:"ticks"`
		Notes []Note `yaml:"notes,omitempty"`
	}

	// Note is a single onset inside a pattern. Key is a MIDI note number,
	// velocity defaults to 1.0 when omitted.
	Note struct {
		Tick     int     `yaml:"tick"`
		Key      int     `yaml:"key"`
		Velocity float64 `yaml:"velocity,omitempty"`
	}

	// PatternGroup is one timeline column: the set of patterns triggered
	// together at that position. Insertion order of groups in the timeline
	// is playback order.
	PatternGroup struct {
		Patterns []string `yaml:"patterns,flow"`
	}

	// TempoMarker overrides the song BPM from a timeline column onward.
	TempoMarker struct {
		Column int     `yaml:"column"`
		BPM    float64 `yaml:"bpm"`
	}
)

// Pattern returns the named pattern, or nil if the song has none.
func (s *Song) Pattern(name string) *Pattern {
	for i := range s.Patterns {
		if s.Patterns[i].Name == name {
			return &s.Patterns[i]
		}
	}
	return nil
}

// BPMAt returns the tempo in effect at the given timeline column: the BPM
// of the last marker at or before the column, or the song BPM when no
// marker applies. Markers do not have to be stored sorted.
func (s *Song) BPMAt(column int) float64 {
	bpm := s.BPM
	markers := make([]TempoMarker, len(s.Tempo))
	copy(markers, s.Tempo)
	sort.Slice(markers, func(i, j int) bool { return markers[i].Column < markers[j].Column })

	for _, marker := range markers {
		if marker.Column > column {
			break
		}
		bpm = marker.BPM
	}

	return bpm
}

// GroupTicks returns the length of a timeline column in ticks: the longest
// pattern triggered there, or DefaultGroupTicks for an empty column.
func (s *Song) GroupTicks(column int) int {
	if column < 0 || column >= len(s.Timeline) {
		return 0
	}

	longest := 0
	for _, name := range s.Timeline[column].Patterns {
		if pattern := s.Pattern(name); pattern != nil && pattern.Ticks > longest {
			longest = pattern.Ticks
		}
	}

	if longest == 0 && len(s.Timeline[column].Patterns) == 0 {
		return DefaultGroupTicks
	}

	return longest
}

// Validate checks that the song can be rendered: positive tempo and
// resolution, a non-empty timeline, and every group reference resolving to
// a pattern with a positive length.
func (s *Song) Validate() error {
	if s.BPM <= 0 {
		return fmt.Errorf("song bpm must be > 0, got %v", s.BPM)
	}
	if s.Resolution <= 0 {
		return fmt.Errorf("song resolution must be > 0, got %d", s.Resolution)
	}
	if len(s.Timeline) == 0 {
		return fmt.Errorf("song timeline is empty")
	}

	for i, group := range s.Timeline {
		for _, name := range group.Patterns {
			pattern := s.Pattern(name)
			if pattern == nil {
				return fmt.Errorf("timeline column %d references unknown pattern %q", i, name)
			}
			if pattern.Ticks <= 0 {
				return fmt.Errorf("pattern %q has non-positive length %d", name, pattern.Ticks)
			}
		}
	}

	for _, marker := range s.Tempo {
		if marker.BPM <= 0 {
			return fmt.Errorf("tempo marker at column %d has non-positive bpm %v", marker.Column, marker.BPM)
		}
		if marker.Column < 0 {
			return fmt.Errorf("tempo marker has negative column %d", marker.Column)
		}
	}

	return nil
}
