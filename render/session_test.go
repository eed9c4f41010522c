package render

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tindrum/audio"
	"tindrum/engine"
	"tindrum/model"
	"tindrum/util"
)

// testSong is the 2-column reference arrangement: pattern length 96
// ticks, resolution 48, 120 bpm. At 48000 Hz the tick size is exactly
// 500 frames, so each column is 48000 frames.
func testSong(columns int) *model.Song {
	song := &model.Song{
		Name:       "test",
		BPM:        120,
		Resolution: 48,
		Patterns:   []model.Pattern{{Name: "beat", Ticks: 96}},
	}
	for i := 0; i < columns; i++ {
		song.Timeline = append(song.Timeline, model.PatternGroup{Patterns: []string{"beat"}})
	}
	return song
}

func testConfig(t *testing.T, name string) model.RenderConfig {
	t.Helper()
	return model.RenderConfig{
		OutputPath:   filepath.Join(t.TempDir(), name),
		SampleRate:   48000,
		BitDepth:     16,
		BufferFrames: 16384,
	}
}

// chunkRecorder fills both channels with a constant and records every
// requested chunk size.
type chunkRecorder struct {
	chunks []int
	fill   float32
}

func (g *chunkRecorder) Process(left, right []float32) int {
	g.chunks = append(g.chunks, len(left))
	for i := range left {
		left[i] = g.fill
		right[i] = g.fill
	}
	return 0
}

// flakyGenerator reports "not ready" a fixed number of times before every
// successful pull.
type flakyGenerator struct {
	inner     Generator
	notReady  int
	countdown int
}

func (g *flakyGenerator) Process(left, right []float32) int {
	if g.countdown > 0 {
		g.countdown--
		return 1
	}
	g.countdown = g.notReady
	return g.inner.Process(left, right)
}

type neverReadyGenerator struct{}

func (neverReadyGenerator) Process(left, right []float32) int { return -1 }

// gateGenerator blocks every pull until the gate channel is fed.
type gateGenerator struct {
	gate chan struct{}
}

func (g *gateGenerator) Process(left, right []float32) int {
	<-g.gate
	return 0
}

// shortSink accepts writes but always claims one frame less than asked.
type shortSink struct{}

func (shortSink) WriteFrames(interleaved []float32, nframes int) (int, error) {
	return nframes - 1, nil
}
func (shortSink) Close() error { return nil }

func shortSinkOpener(path string, sampleRate int, format audio.Format) (audio.Sink, error) {
	return shortSink{}, nil
}

func collectEvents(s *Session) []model.Event {
	events := make([]model.Event, 0)
	for event := range s.Events() {
		events = append(events, event)
	}
	return events
}

func runToCompletion(t *testing.T, s *Session) []model.Event {
	t.Helper()

	if err := s.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return collectEvents(s)
}

func TestRenderChunkSequence(t *testing.T) {
	cfg := testConfig(t, "out.wav")
	gen := &chunkRecorder{fill: 0.25}
	transport := engine.NewTransport()

	session, err := NewSession(testSong(2), cfg, gen, transport)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	runToCompletion(t, session)
	if err := session.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	// each 48000-frame column splits into two full buffers plus the
	// 15232-frame remainder
	want := []int{16384, 16384, 15232, 16384, 16384, 15232}
	if len(gen.chunks) != len(want) {
		t.Fatalf("chunk count = %d (%v), want %d", len(gen.chunks), gen.chunks, len(want))
	}
	total := 0
	for i, chunk := range gen.chunks {
		if chunk != want[i] {
			t.Errorf("chunk %d = %d, want %d", i, chunk, want[i])
		}
		total += chunk
	}
	if total != 96000 {
		t.Errorf("total frames pulled = %d, want 96000", total)
	}

	if session.State() != StateFinished {
		t.Errorf("state = %s, want finished", session.State())
	}
	if !util.FileExists(cfg.OutputPath) {
		t.Error("no output file written")
	}
	if transport.Rolling() {
		t.Error("transport still rolling after render")
	}
}

func TestRenderProgressSequence(t *testing.T) {
	cfg := testConfig(t, "out.wav")

	session, err := NewSession(testSong(3), cfg, &chunkRecorder{}, engine.NewTransport())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	events := runToCompletion(t, session)
	if err := session.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	percents := make([]int, 0)
	for _, event := range events {
		if event.Kind == model.EventProgress {
			percents = append(percents, event.Percent)
		}
		if event.Session != session.ID() {
			t.Errorf("event carries session %v, want %v", event.Session, session.ID())
		}
	}

	want := []int{0, 33, 67, 100}
	if len(percents) != len(want) {
		t.Fatalf("progress sequence = %v, want %v", percents, want)
	}
	for i := range want {
		if percents[i] != want[i] {
			t.Errorf("progress[%d] = %d, want %d", i, percents[i], want[i])
		}
		if i > 0 && percents[i] < percents[i-1] {
			t.Errorf("progress decreased: %v", percents)
		}
	}

	last := events[len(events)-1]
	if last.Kind != model.EventFinished {
		t.Errorf("last event = %s, want finished", last.Kind)
	}
}

func TestRenderEmptyColumnUsesDefaultLength(t *testing.T) {
	song := &model.Song{
		BPM:        120,
		Resolution: 48,
		Timeline:   []model.PatternGroup{{}},
	}
	cfg := testConfig(t, "out.wav")
	gen := &chunkRecorder{}

	session, err := NewSession(song, cfg, gen, engine.NewTransport())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	runToCompletion(t, session)
	if err := session.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	// 192 default ticks at 500 frames per tick
	total := 0
	for _, chunk := range gen.chunks {
		total += chunk
	}
	if total != 96000 {
		t.Errorf("empty column rendered %d frames, want 96000", total)
	}
}

func TestRenderRetriesNotReadyGenerator(t *testing.T) {
	cfg := testConfig(t, "out.wav")
	inner := &chunkRecorder{fill: 0.5}
	gen := &flakyGenerator{inner: inner, notReady: 3, countdown: 3}

	session, err := NewSession(testSong(1), cfg, gen, engine.NewTransport())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	runToCompletion(t, session)
	if err := session.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	want := []int{16384, 16384, 15232}
	if len(inner.chunks) != len(want) {
		t.Fatalf("chunks = %v, want %v", inner.chunks, want)
	}
	for i := range want {
		if inner.chunks[i] != want[i] {
			t.Errorf("chunk %d = %d, want %d", i, inner.chunks[i], want[i])
		}
	}
}

func TestRenderFailsWhenGeneratorNeverReady(t *testing.T) {
	cfg := testConfig(t, "out.wav")

	session, err := NewSession(testSong(1), cfg, neverReadyGenerator{}, engine.NewTransport())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	events := runToCompletion(t, session)

	err = session.Wait()
	if !errors.Is(err, ErrGeneratorNeverReady) {
		t.Fatalf("Wait = %v, want ErrGeneratorNeverReady", err)
	}
	if session.State() != StateFailed {
		t.Errorf("state = %s, want failed", session.State())
	}
	if util.FileExists(cfg.OutputPath) {
		t.Error("partial output file left behind")
	}

	last := events[len(events)-1]
	if last.Kind != model.EventFailed || last.Err == nil {
		t.Errorf("last event = %+v, want failed with error", last)
	}
}

func TestRenderRejectsOggBeforeOpeningFile(t *testing.T) {
	cfg := testConfig(t, "out.ogg")

	session, err := NewSession(testSong(1), cfg, &chunkRecorder{}, engine.NewTransport())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	runToCompletion(t, session)

	err = session.Wait()
	if !errors.Is(err, ErrFormatUnsupported) {
		t.Fatalf("Wait = %v, want ErrFormatUnsupported", err)
	}
	if util.FileExists(cfg.OutputPath) {
		t.Error("file was created despite unsupported format")
	}
}

func TestRenderFlacToCompletion(t *testing.T) {
	cfg := testConfig(t, "out.flac")
	gen := &chunkRecorder{fill: 0.25}

	session, err := NewSession(testSong(1), cfg, gen, engine.NewTransport())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	events := runToCompletion(t, session)

	if err := session.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if session.State() != StateFinished {
		t.Errorf("state = %s, want finished", session.State())
	}
	if !util.FileExists(cfg.OutputPath) {
		t.Error("no flac output file written")
	}

	last := events[len(events)-1]
	if last.Kind != model.EventFinished {
		t.Errorf("last event = %s, want finished", last.Kind)
	}
}

func TestRenderShortWriteIsFatalByDefault(t *testing.T) {
	cfg := testConfig(t, "out.wav")

	session, err := NewSession(testSong(1), cfg, &chunkRecorder{}, engine.NewTransport(),
		WithSinkOpener(shortSinkOpener))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	runToCompletion(t, session)

	err = session.Wait()
	if !errors.Is(err, ErrShortWrite) {
		t.Fatalf("Wait = %v, want ErrShortWrite", err)
	}
	if session.State() != StateFailed {
		t.Errorf("state = %s, want failed", session.State())
	}
}

func TestRenderShortWriteContinuesInBestEffortMode(t *testing.T) {
	cfg := testConfig(t, "out.wav")
	cfg.BestEffort = true
	gen := &chunkRecorder{}

	session, err := NewSession(testSong(1), cfg, gen, engine.NewTransport(),
		WithSinkOpener(shortSinkOpener))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	runToCompletion(t, session)

	if err := session.Wait(); err != nil {
		t.Fatalf("Wait = %v, want nil in best-effort mode", err)
	}
	if session.State() != StateFinished {
		t.Errorf("state = %s, want finished", session.State())
	}
	if len(gen.chunks) != 3 {
		t.Errorf("best-effort render stopped early: %v", gen.chunks)
	}
}

func TestRenderCancellation(t *testing.T) {
	cfg := testConfig(t, "out.wav")

	session, err := NewSession(testSong(2), cfg, &chunkRecorder{}, engine.NewTransport())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := session.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := session.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	collectEvents(session)

	err = session.Wait()
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait = %v, want context.Canceled", err)
	}
	if util.FileExists(cfg.OutputPath) {
		t.Error("cancelled render left a partial file")
	}
	if session.State() != StateFailed {
		t.Errorf("state = %s, want failed", session.State())
	}
}

func TestSinkOpenFailure(t *testing.T) {
	cfg := testConfig(t, "out.wav")
	cfg.OutputPath = filepath.Join(cfg.OutputPath, "not-a-directory", "out.wav")

	session, err := NewSession(testSong(1), cfg, &chunkRecorder{}, engine.NewTransport())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	runToCompletion(t, session)

	err = session.Wait()
	if !errors.Is(err, ErrSinkOpenFailure) {
		t.Fatalf("Wait = %v, want ErrSinkOpenFailure", err)
	}
}

func TestNewSessionValidation(t *testing.T) {
	cfg := testConfig(t, "out.wav")

	badCfg := cfg
	badCfg.BitDepth = 12
	if _, err := NewSession(testSong(1), badCfg, &chunkRecorder{}, engine.NewTransport()); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("bad bit depth: err = %v, want ErrInvalidConfiguration", err)
	}

	badSong := testSong(1)
	badSong.BPM = 0
	if _, err := NewSession(badSong, cfg, &chunkRecorder{}, engine.NewTransport()); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("zero bpm: err = %v, want ErrInvalidConfiguration", err)
	}

	if _, err := NewSession(testSong(1), cfg, nil, engine.NewTransport()); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("nil generator: err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	cfg := testConfig(t, "out.wav")

	session, err := NewSession(testSong(1), cfg, &chunkRecorder{}, engine.NewTransport())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if session.State() != StateIdle {
		t.Fatalf("initial state = %s, want idle", session.State())
	}

	// start before connect is refused
	if err := session.Start(context.Background()); !errors.Is(err, ErrSessionState) {
		t.Errorf("Start from idle: err = %v, want ErrSessionState", err)
	}
	if err := session.Wait(); !errors.Is(err, ErrSessionState) {
		t.Errorf("Wait before start: err = %v, want ErrSessionState", err)
	}

	if err := session.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if session.State() != StateConnected {
		t.Fatalf("state after connect = %s, want connected", session.State())
	}

	// double connect is refused
	if err := session.Connect(); !errors.Is(err, ErrSessionState) {
		t.Errorf("double Connect: err = %v, want ErrSessionState", err)
	}

	// disconnect from connected returns to idle
	if err := session.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if session.State() != StateIdle {
		t.Errorf("state after disconnect = %s, want idle", session.State())
	}
}

func TestDisconnectWhileRenderingIsRefused(t *testing.T) {
	cfg := testConfig(t, "out.wav")
	gen := &gateGenerator{gate: make(chan struct{})}

	session, err := NewSession(testSong(1), cfg, gen, engine.NewTransport())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := session.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// wait for the worker to block inside its first pull
	deadline := time.Now().Add(time.Second)
	for session.State() != StateRendering && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if err := session.Disconnect(); !errors.Is(err, ErrSessionBusy) {
		t.Errorf("Disconnect while rendering: err = %v, want ErrSessionBusy", err)
	}

	// a closed gate lets every remaining pull through immediately
	close(gen.gate)

	collectEvents(session)
	if err := session.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if err := session.Disconnect(); err != nil {
		t.Errorf("Disconnect after finish: %v", err)
	}
}
