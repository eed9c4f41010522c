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
	"fmt"
	"os"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/transforms"
	"github.com/go-audio/wav"
)

const numChannels = 2 // output is always stereo

// Sink is the abstraction over the open output file plus its
// container/codec state. WriteFrames consumes clamped, interleaved stereo
// samples (2*nframes values) and returns the number of frames actually
// written; the bit depth conversion happens here, not in the caller.
//
// A sink sees a single, strictly ordered stream from one writer.
type Sink interface {
	WriteFrames(interleaved []float32, nframes int) (int, error)
	Close() error
}

// OpenSink creates the output file and wraps it in the encoder for the
// resolved format. Callers are expected to have passed format.Supported()
// already; an unsupported format here means no file is created.
func OpenSink(path string, sampleRate int, format Format) (Sink, error) {
	if !format.Supported() {
		return nil, fmt.Errorf("no encoder available for %s", format)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	switch format.Container {
	case ContainerWAV:
		return &pcmSink{
			file:   file,
			enc:    wav.NewEncoder(file, sampleRate, format.BitDepth, numChannels, 1),
			format: format,
			rate:   sampleRate,
		}, nil

	case ContainerAIFF:
		return &pcmSink{
			file:   file,
			enc:    aiff.NewEncoder(file, sampleRate, format.BitDepth, numChannels),
			format: format,
			rate:   sampleRate,
		}, nil

	case ContainerFLAC:
		sink, err := newFlacSink(file, sampleRate, format)
		if err != nil {
			file.Close()
			os.Remove(path)
			return nil, err
		}
		return sink, nil
	}

	file.Close()
	os.Remove(path)
	return nil, fmt.Errorf("no encoder available for %s", format)
}

// pcmEncoder is the shared surface of the wav and aiff encoders.
type pcmEncoder interface {
	Write(buf *goaudio.IntBuffer) error
	Close() error
}

// pcmSink feeds a go-audio encoder: floats are scaled up to the target
// bit depth and handed over as an integer buffer.
type pcmSink struct {
	file   *os.File
	enc    pcmEncoder
	format Format
	rate   int
}

func (s *pcmSink) WriteFrames(interleaved []float32, nframes int) (int, error) {
	if nframes == 0 {
		return 0, nil
	}

	fBuf := &goaudio.Float32Buffer{
		Format: &goaudio.Format{
			NumChannels: numChannels,
			SampleRate:  s.rate,
		},
		Data: make([]float32, nframes*numChannels),
	}
	copy(fBuf.Data, interleaved[:nframes*numChannels])

	if err := transforms.PCMScaleF32(fBuf, s.format.BitDepth); err != nil {
		return 0, err
	}

	iBuf := fBuf.AsIntBuffer()
	iBuf.SourceBitDepth = s.format.BitDepth

	// RIFF stores 8 bit samples unsigned, centered on 128
	if s.format.Encoding == EncodingPCMU8 {
		for i := range iBuf.Data {
			iBuf.Data[i] += 128
		}
	}

	if err := s.enc.Write(iBuf); err != nil {
		return 0, err
	}

	return nframes, nil
}

func (s *pcmSink) Close() error {
	encErr := s.enc.Close()
	fileErr := s.file.Close()

	if encErr != nil {
		return encErr
	}
	return fileErr
}
