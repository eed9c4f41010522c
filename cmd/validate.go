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
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"tindrum/app"
	"tindrum/util"

	"github.com/spf13/cobra"
)

var (
	argValidateSampleRate int

	validateCmd = &cobra.Command{
		Use:   "validate <song.yml>",
		Short: "Check that a song file is renderable and print a summary",
		Args:  cobra.ExactArgs(1),

		Run: func(cmd *cobra.Command, args []string) {
			app.ConfigureTextLogger(argVerbose)

			song, err := util.LoadSong(args[0])
			if err != nil {
				slog.Error(err.Error())
				os.Exit(1)
			}

			frames := util.SongFrames(song, argValidateSampleRate)
			seconds := float64(frames) / float64(argValidateSampleRate)

			fmt.Printf("song:       %s\n", song.Name)
			fmt.Printf("bpm:        %v (%d tempo markers)\n", song.BPM, len(song.Tempo))
			fmt.Printf("resolution: %d ticks/beat\n", song.Resolution)
			fmt.Printf("patterns:   %d\n", len(song.Patterns))
			fmt.Printf("columns:    %d\n", len(song.Timeline))
			fmt.Printf("length:     %d frames at %d Hz (%s)\n",
				frames, argValidateSampleRate, util.FormatDuration(seconds))
		},
	}
)

func init() {
	validateCmd.Flags().IntVarP(&argValidateSampleRate, "sample-rate", "r", 44100, "Sample rate used for the length estimate")

	rootCmd.AddCommand(validateCmd)
}
