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

// Package reaper is the process-wide teardown registry: cleanup callbacks
// accumulate during startup and run exactly once, in reverse registration
// order, when the process is reaped (interrupt or fatal error). A render
// in flight registers its context cancel here so an interrupt aborts the
// export cleanly.
package reaper

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

type callback struct {
	name string
	fn   func()
}

var (
	mu        sync.Mutex
	callbacks []callback
	reaped    atomic.Bool
	reapOnce  sync.Once
)

// Reaped reports whether teardown has been requested.
func Reaped() bool {
	return reaped.Load()
}

// Reap runs all registered callbacks in reverse order. Safe to call from
// any goroutine; later calls are no-ops.
func Reap() {
	reaped.Store(true)

	reapOnce.Do(func() {
		mu.Lock()
		reversed := slices.Clone(callbacks)
		mu.Unlock()
		slices.Reverse(reversed)

		for _, cb := range reversed {
			slog.Debug("reaper: calling reap callback", "name", cb.name)
			cb.fn()
		}
	})
}

// Callback registers a named teardown function.
func Callback(name string, fn func()) {
	mu.Lock()
	defer mu.Unlock()

	callbacks = append(callbacks, callback{name: name, fn: fn})
}
