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

import "github.com/google/uuid"

type EventKind int

const (
	// EventProgress carries a percentage in [0,100]. One is emitted when
	// the render worker starts (0) and one after each completed timeline
	// column; the sequence is non-decreasing and ends at 100 on success.
	EventProgress EventKind = iota

	// EventFinished is terminal: the output file is complete on disk.
	EventFinished

	// EventFailed is terminal: the render aborted and no output file was
	// left behind.
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventFinished:
		return "finished"
	case EventFailed:
		return "failed"
	}
	return "unknown"
}

// Event is a side-channel notification from a render session. Emitting
// one never blocks the render worker.
type Event struct {
	Kind    EventKind
	Percent int
	Session uuid.UUID
	Err     error
}
