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
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tindrum/app"
	"tindrum/model"

	"github.com/spf13/cobra"
)

var (
	argOutputPath   string
	argSampleRate   int
	argBitDepth     int
	argBufferFrames int
	argBestEffort   bool

	exportCmd = &cobra.Command{
		Use:   "export <song.yml>",
		Short: "Render a song file to an audio file",
		Long: "Render a song file offline to WAV, AIFF or FLAC. The container is\n" +
			"chosen by the output file extension, the sample encoding by --bit-depth.",
		Args: cobra.ExactArgs(1),

		Run: func(cmd *cobra.Command, args []string) {
			app.ConfigureTextLogger(argVerbose)

			songPath := args[0]

			outputPath := argOutputPath
			if outputPath == "" {
				base := strings.TrimSuffix(filepath.Base(songPath), filepath.Ext(songPath))
				outputPath = base + ".wav"
			}

			cfg := model.RenderConfig{
				OutputPath:   outputPath,
				SampleRate:   argSampleRate,
				BitDepth:     argBitDepth,
				BufferFrames: argBufferFrames,
				BestEffort:   argBestEffort,
			}

			if err := app.RunExport(songPath, cfg); err != nil {
				slog.Error("export failed: " + err.Error())
				os.Exit(1)
			}
		},
	}
)

func init() {
	exportCmd.Flags().StringVarP(&argOutputPath, "out", "o", "", "Output file path (.wav, .aiff, .flac; defaults to <song>.wav)")
	exportCmd.Flags().IntVarP(&argSampleRate, "sample-rate", "r", 44100, "Output sample rate in Hz")
	exportCmd.Flags().IntVarP(&argBitDepth, "bit-depth", "b", 16, "Sample bit depth (8, 16, 24 or 32)")
	exportCmd.Flags().IntVarP(&argBufferFrames, "buffer-size", "p", 16384, "Render buffer size in frames")
	exportCmd.Flags().BoolVarP(&argBestEffort, "best-effort", "", false, "Log short sink writes and keep rendering instead of aborting")

	rootCmd.AddCommand(exportCmd)
}
