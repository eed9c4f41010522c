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

import "errors"

var (
	// ErrInvalidConfiguration covers non-positive sample rate, buffer
	// size, bpm or resolution and bad bit depths. Raised before any work
	// starts.
	ErrInvalidConfiguration = errors.New("invalid render configuration")

	// ErrFormatUnsupported means the resolved container/encoding pair has
	// no encoder. Raised before any file handle is opened.
	ErrFormatUnsupported = errors.New("unsupported container/encoding combination")

	// ErrSinkOpenFailure means the output file could not be created.
	ErrSinkOpenFailure = errors.New("could not open output file")

	// ErrShortWrite means a chunk write consumed fewer frames than
	// requested. Fatal unless the configuration asks for best effort.
	ErrShortWrite = errors.New("short write to encoding sink")

	// ErrGeneratorNeverReady means the pull callback kept signalling
	// "not ready" past the retry bound.
	ErrGeneratorNeverReady = errors.New("generator never became ready")

	// ErrSessionBusy is returned by Disconnect while a render is running;
	// cancel the context passed to Start instead.
	ErrSessionBusy = errors.New("session is rendering")

	// ErrSessionState is returned by lifecycle calls made from the wrong
	// state, e.g. Start before Connect.
	ErrSessionState = errors.New("invalid session state for operation")
)
