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
package audio

import (
	"io"
	"math"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// flacSink writes lossless frames through mewkiz/flac. Each chunk becomes
// one variable-size FLAC frame with verbatim subframes; compression of the
// prediction residual is the encoder's business.
//
// The encoder takes ownership of the writer: its Close closes the
// underlying file along with the stream, so the sink never touches the
// handle again after construction.
type flacSink struct {
	enc      *flac.Encoder
	rate     int
	depth    int
	frameNum uint64
}

func newFlacSink(w io.Writer, sampleRate int, format Format) (*flacSink, error) {
	info := &meta.StreamInfo{
		BlockSizeMin:  16,
		BlockSizeMax:  65535,
		SampleRate:    uint32(sampleRate),
		NChannels:     numChannels,
		BitsPerSample: uint8(format.BitDepth),
	}

	enc, err := flac.NewEncoder(w, info)
	if err != nil {
		return nil, err
	}

	return &flacSink{
		enc:   enc,
		rate:  sampleRate,
		depth: format.BitDepth,
	}, nil
}

func (s *flacSink) WriteFrames(interleaved []float32, nframes int) (int, error) {
	if nframes == 0 {
		return 0, nil
	}

	scale := float64(int64(1)<<(s.depth-1)) - 1

	subframes := make([]*frame.Subframe, numChannels)
	for ch := range subframes {
		samples := make([]int32, nframes)
		for i := 0; i < nframes; i++ {
			samples[i] = int32(math.Round(float64(interleaved[i*numChannels+ch]) * scale))
		}
		subframes[ch] = &frame.Subframe{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   samples,
			NSamples:  nframes,
		}
	}

	f := &frame.Frame{
		Header: frame.Header{
			HasFixedBlockSize: false,
			BlockSize:         uint16(nframes),
			SampleRate:        uint32(s.rate),
			Channels:          frame.ChannelsLR,
			BitsPerSample:     uint8(s.depth),
			Num:               s.frameNum,
		},
		Subframes: subframes,
	}

	if err := s.enc.WriteFrame(f); err != nil {
		return 0, err
	}

	s.frameNum++
	return nframes, nil
}

func (s *flacSink) Close() error {
	return s.enc.Close()
}
