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

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"

	"tindrum/audio"
	"tindrum/model"
)

// Generator is the pull callback into the audio engine. Process fills
// left and right with exactly len(left) frames and returns 0 when the
// data is ready; any other value means "not yet, ask again". The session
// owns the buffers passed in and never shares them between calls.
type Generator interface {
	Process(left, right []float32) int
}

// Transport is the engine transport the session forces into a rolling
// state before the first pull. Offline rendering assumes the transport
// stays rolling for the whole run; there is no pause interaction.
type Transport interface {
	Start()
	Stop()
	Rolling() bool
}

type State int

const (
	StateIdle State = iota
	StateConnected
	StateRendering
	StateFinished // terminal
	StateFailed   // terminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnected:
		return "connected"
	case StateRendering:
		return "rendering"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// sinkOpener exists so tests can slide a stub sink under the loop.
type sinkOpener func(path string, sampleRate int, format audio.Format) (audio.Sink, error)

type Option func(*Session)

// WithSinkOpener replaces the default audio.OpenSink factory.
func WithSinkOpener(open sinkOpener) Option {
	return func(s *Session) { s.openSink = open }
}

// Session is the top level controller for exactly one render-to-
// completion run. It owns its working buffers and the sink for its whole
// lifetime; the song and tempo map are read but never mutated, and the
// caller must keep them frozen while the render runs.
type Session struct {
	id        uuid.UUID
	cfg       model.RenderConfig
	song      *model.Song
	generator Generator
	transport Transport
	openSink  sinkOpener

	// working buffers, allocated on Connect, released on Disconnect
	left        []float32
	right       []float32
	interleaved []float32

	events chan model.Event

	mu    sync.Mutex
	state State
	err   error
	done  chan struct{}
}

// NewSession validates the configuration and arrangement up front;
// nothing is allocated and no file is touched until Connect/Start. All
// tempo values for the whole timeline are checked here so that a bad
// marker cannot fail the render halfway through a file.
func NewSession(song *model.Song, cfg model.RenderConfig, generator Generator, transport Transport, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if err := song.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if generator == nil || transport == nil {
		return nil, fmt.Errorf("%w: generator and transport are required", ErrInvalidConfiguration)
	}

	for column := range song.Timeline {
		if bpm := song.BPMAt(column); bpm <= 0 {
			return nil, fmt.Errorf("%w: bpm %v at column %d", ErrInvalidConfiguration, bpm, column)
		}
	}

	s := &Session{
		id:        uuid.New(),
		cfg:       cfg,
		song:      song,
		generator: generator,
		transport: transport,
		openSink:  audio.OpenSink,
		events:    make(chan model.Event, 64),
		state:     StateIdle,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Session) ID() uuid.UUID { return s.id }

// Events returns the progress/completion stream. The channel is closed
// after the terminal event.
func (s *Session) Events() <-chan model.Event { return s.events }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect allocates the working buffers: one per source channel sized to
// the configured buffer, plus the interleaved output buffer at twice
// that.
func (s *Session) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return fmt.Errorf("%w: connect from %s", ErrSessionState, s.state)
	}

	s.left = make([]float32, s.cfg.BufferFrames)
	s.right = make([]float32, s.cfg.BufferFrames)
	s.interleaved = make([]float32, s.cfg.BufferFrames*2)
	s.state = StateConnected

	slog.Debug("render session connected",
		"session", s.id,
		"buffer_frames", s.cfg.BufferFrames)

	return nil
}

// Start spawns the one render worker and returns immediately; the whole
// timeline is rendered end to end on that goroutine, off any realtime
// thread. The context is checked once per chunk, so cancellation lands
// within one buffer of audio. Use Wait for the outcome.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected {
		return fmt.Errorf("%w: start from %s", ErrSessionState, s.state)
	}

	s.state = StateRendering
	s.done = make(chan struct{})

	go s.run(ctx)

	return nil
}

// Wait blocks until the render worker exits and returns its error, if
// any. Only valid after Start.
func (s *Session) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return fmt.Errorf("%w: wait before start", ErrSessionState)
	}

	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Disconnect releases the working buffers. Calling it mid-render is
// refused; cancel the render context and Wait first.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRendering {
		return ErrSessionBusy
	}

	s.left = nil
	s.right = nil
	s.interleaved = nil

	if s.state == StateConnected {
		s.state = StateIdle
	}

	slog.Debug("render session disconnected", "session", s.id)

	return nil
}

// run is the render worker. It owns the sink from open to close and is
// the only writer for the session's lifetime.
func (s *Session) run(ctx context.Context) {
	slog.Info("render worker started",
		"session", s.id,
		"output", s.cfg.OutputPath,
		"sample_rate", s.cfg.SampleRate,
		"bit_depth", s.cfg.BitDepth)

	s.emit(model.Event{Kind: model.EventProgress, Percent: 0, Session: s.id})

	// always rolling, no user interaction during an offline render
	s.transport.Start()

	err := s.render(ctx)

	s.transport.Stop()

	s.mu.Lock()
	if err != nil {
		s.state = StateFailed
		s.err = err
	} else {
		s.state = StateFinished
	}
	s.mu.Unlock()

	if err != nil {
		slog.Error("render failed", "session", s.id, "error", err)
		s.emit(model.Event{Kind: model.EventFailed, Session: s.id, Err: err})
	} else {
		slog.Info("render finished", "session", s.id, "output", s.cfg.OutputPath)
		s.emit(model.Event{Kind: model.EventFinished, Percent: 100, Session: s.id})
	}

	close(s.events)
	close(s.done)
}

// render opens the sink and drives the chunked loop. On any failure the
// partial file is removed: a failed export must never look like a
// completed one.
func (s *Session) render(ctx context.Context) error {
	format := audio.DetectFormat(s.cfg.OutputPath, s.cfg.BitDepth)
	if !format.Supported() {
		return fmt.Errorf("%w: %s", ErrFormatUnsupported, format)
	}

	slog.Debug("output format resolved", "session", s.id, "format", format.String())

	sink, err := s.openSink(s.cfg.OutputPath, s.cfg.SampleRate, format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSinkOpenFailure, err)
	}

	if err := s.renderTimeline(ctx, sink); err != nil {
		sink.Close()
		if rmErr := os.Remove(s.cfg.OutputPath); rmErr != nil {
			slog.Error("could not remove partial output file",
				"session", s.id, "path", s.cfg.OutputPath, "error", rmErr)
		}
		return err
	}

	return sink.Close()
}

// emit never blocks the worker; if the consumer falls behind the event is
// dropped. Progress is advisory, correctness never depends on it.
func (s *Session) emit(event model.Event) {
	select {
	case s.events <- event:
	default:
	}
}
