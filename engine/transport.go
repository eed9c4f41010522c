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

import "sync"

// Transport is the engine's rolling-state flag. The render session
// forces it to rolling before the first pull and stops it when the run
// ends; nothing else touches it during an offline render.
type Transport struct {
	mu      sync.Mutex
	rolling bool
}

func NewTransport() *Transport {
	return &Transport{}
}

func (t *Transport) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolling = true
}

func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolling = false
}

func (t *Transport) Rolling() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rolling
}
