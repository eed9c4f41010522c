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
package app

import (
	"log/slog"
	"os"
)

// ConfigureTextLogger routes slog to stderr; stdout stays clean for
// anything the commands print deliberately.
func ConfigureTextLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
