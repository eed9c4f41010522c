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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tindrum/engine"
	"tindrum/model"
	"tindrum/reaper"
	"tindrum/render"
	"tindrum/shared"
	"tindrum/util"
)

// RunExport wires one full export: load the song, build the generator
// and transport, run a render session to completion and stream its
// progress to stderr. Interrupts reap the process, which cancels the
// render context; the session then removes the partial file itself.
func RunExport(songPath string, cfg model.RenderConfig) error {
	song, err := util.LoadSong(songPath)
	if err != nil {
		return err
	}

	// catch a bad destination before any rendering work happens
	if dir := filepath.Dir(cfg.OutputPath); !util.DirectoryExists(dir) {
		return fmt.Errorf("output directory %v does not exist", dir)
	}

	frames := util.SongFrames(song, cfg.SampleRate)
	slog.Info("loaded song",
		"song", song.Name,
		"columns", len(song.Timeline),
		"duration", util.FormatDuration(float64(frames)/float64(cfg.SampleRate)))

	sequencer := engine.NewSequencer(song, cfg.SampleRate)
	transport := engine.NewTransport()

	session, err := render.NewSession(song, cfg, sequencer, transport)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reaper.Callback("cancel render", cancel)
	shared.CatchSigint(func() {
		slog.Info("caught sigint, aborting export")
		reaper.Reap()
	})

	if err := session.Connect(); err != nil {
		return err
	}
	defer session.Disconnect()

	if err := session.Start(ctx); err != nil {
		return err
	}

	for event := range session.Events() {
		switch event.Kind {
		case model.EventProgress:
			// stop repainting once an interrupt landed, the shutdown
			// messages own the terminal from here
			if reaper.Reaped() {
				continue
			}
			fmt.Fprintf(os.Stderr, "\rrendering... %3d%%", event.Percent)
		case model.EventFinished:
			fmt.Fprintf(os.Stderr, "\rrendering... done\n")
		case model.EventFailed:
			fmt.Fprintf(os.Stderr, "\rrendering... failed\n")
		}
	}

	return session.Wait()
}
