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
	"path/filepath"
	"strings"
)

type Container int

const (
	ContainerWAV  Container = iota // little-endian RIFF, the default
	ContainerAIFF                  // big-endian
	ContainerFLAC
	ContainerOGG
)

func (c Container) String() string {
	switch c {
	case ContainerWAV:
		return "wav"
	case ContainerAIFF:
		return "aiff"
	case ContainerFLAC:
		return "flac"
	case ContainerOGG:
		return "ogg"
	}
	return "unknown"
}

type Encoding int

const (
	EncodingPCMU8 Encoding = iota // unsigned 8 bit, WAV only
	EncodingPCMS8                 // signed 8 bit
	EncodingPCM16
	EncodingPCM24
	EncodingPCM32
	EncodingVorbis
)

func (e Encoding) String() string {
	switch e {
	case EncodingPCMU8:
		return "pcm_u8"
	case EncodingPCMS8:
		return "pcm_s8"
	case EncodingPCM16:
		return "pcm_16"
	case EncodingPCM24:
		return "pcm_24"
	case EncodingPCM32:
		return "pcm_32"
	case EncodingVorbis:
		return "vorbis"
	}
	return "unknown"
}

// Format is the resolved container/encoding pair for one output file.
// BitDepth is 0 for Vorbis, where the requested depth is ignored.
type Format struct {
	Container Container
	Encoding  Encoding
	BitDepth  int
}

func (f Format) String() string {
	return f.Container.String() + "/" + f.Encoding.String()
}

// DetectFormat maps the output file extension and the requested bit depth
// to a container and sample encoding. The extension match is
// case-insensitive and anything unrecognized falls back to WAV. Depth 8
// means unsigned samples in WAV and signed samples in AIFF; 16, 24 and 32
// are always signed. An .ogg target forces Vorbis and discards the
// requested depth entirely.
func DetectFormat(path string, bitDepth int) Format {
	container := ContainerWAV

	switch strings.ToLower(filepath.Ext(path)) {
	case ".aiff":
		container = ContainerAIFF
	case ".flac":
		container = ContainerFLAC
	case ".ogg":
		return Format{Container: ContainerOGG, Encoding: EncodingVorbis}
	}

	encoding := EncodingPCM16
	switch bitDepth {
	case 8:
		if container == ContainerAIFF {
			encoding = EncodingPCMS8
		} else {
			encoding = EncodingPCMU8
		}
	case 24:
		encoding = EncodingPCM24
	case 32:
		encoding = EncodingPCM32
	}

	return Format{Container: container, Encoding: encoding, BitDepth: bitDepth}
}

// Supported reports whether an encoder exists for the resolved
// combination. This is consulted before any file handle is opened.
//
// OGG/Vorbis always fails: there is no Vorbis encoder available to pure
// Go, so the selection resolves but cannot be written. FLAC holds signed
// samples only and caps out at 24 bit, so the flac/pcm_u8 pair an 8-bit
// .flac target resolves to is rejected here.
func (f Format) Supported() bool {
	switch f.Container {
	case ContainerOGG:
		return false
	case ContainerFLAC:
		return f.Encoding == EncodingPCMS8 || f.Encoding == EncodingPCM16 || f.Encoding == EncodingPCM24
	case ContainerWAV:
		return f.Encoding != EncodingPCMS8 && f.Encoding != EncodingVorbis
	case ContainerAIFF:
		return f.Encoding != EncodingPCMU8 && f.Encoding != EncodingVorbis
	}
	return false
}
