// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/ik5/audvis"
	"github.com/ik5/audvis/analysis"
	"github.com/ik5/audvis/audio"
	"github.com/ik5/audvis/playback"
	"github.com/ik5/audvis/waveform"
)

// Capturer opens the microphone and streams what it captures into tap until
// the returned Closer is closed. Captured audio must never be routed to an
// audible output.
type Capturer interface {
	Open(ctx context.Context, tap *audio.Tap) (io.Closer, error)
}

// DecodeFunc turns raw file bytes into samples.
type DecodeFunc func(ctx context.Context, raw []byte) (*audio.Buffer, error)

// FallbackFunc builds a transport for bytes that DecodeFunc rejected.
type FallbackFunc func(ctx context.Context, raw []byte, out playback.Output, tap *audio.Tap) (playback.Transport, error)

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the default tunables.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLogger sets the logger; slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock sets the clock trackers measure playback against.
func WithClock(c playback.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithDecoder replaces audvis.DecodeBytes as the file decoder.
func WithDecoder(fn DecodeFunc) Option {
	return func(e *Engine) { e.decode = fn }
}

// WithFallback replaces the ffmpeg element transport used for
// undecodable files.
func WithFallback(fn FallbackFunc) Option {
	return func(e *Engine) { e.fallback = fn }
}

// OnTrackEnded registers fn to run after a loaded file plays to its end.
func OnTrackEnded(fn func()) Option {
	return func(e *Engine) { e.onEnded = fn }
}

// source is the currently connected input.
type source int

const (
	sourceNone source = iota
	sourceMic
	sourceFile
)

// Engine is the mode controller. It is safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	capturer Capturer
	out      playback.Output
	decode   DecodeFunc
	fallback FallbackFunc
	clock    playback.Clock
	log      *slog.Logger
	onEnded  func()

	analyzer *analysis.Analyzer
	bands    *analysis.BandExtractor
	history  *waveform.History

	gen     uint64
	closed  bool
	source  source
	mic     io.Closer
	tracker *playback.Tracker
	profile *waveform.Profile
	scrub   ScrubState
}

// New builds an idle engine. out plays file audio; capturer opens the
// microphone.
func New(out playback.Output, capturer Capturer, opts ...Option) *Engine {
	e := &Engine{
		cfg:      DefaultConfig(),
		capturer: capturer,
		out:      out,
		decode:   audvis.DecodeBytes,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fallback == nil {
		e.fallback = e.elementFallback
	}

	e.analyzer = analysis.NewAnalyzer(
		analysis.WithSmoothing(e.cfg.Smoothing),
		analysis.WithDecibelRange(e.cfg.MinDecibels, e.cfg.MaxDecibels),
	)
	e.bands = analysis.NewBandExtractor(e.cfg.BandAlpha)
	e.history = waveform.NewHistory(e.cfg.HistorySize)

	return e
}

func (e *Engine) elementFallback(ctx context.Context, raw []byte, out playback.Output, tap *audio.Tap) (playback.Transport, error) {
	tr, err := playback.NewElementTransport(ctx, raw, out, tap,
		playback.WithFFmpegPath(e.cfg.FFmpegPath),
		playback.WithFFprobePath(e.cfg.FFprobePath),
		playback.WithElementLogger(e.log),
	)
	if err != nil {
		return nil, err
	}
	return tr, nil
}

// nextGen starts a new acquisition and returns its generation.
func (e *Engine) nextGen() (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, ErrClosed
	}
	e.gen++
	return e.gen, nil
}

// abandon gives up acquisition gen after it failed. When no newer request
// arrived meanwhile, the request it superseded becomes current again.
func (e *Engine) abandon(gen uint64) {
	e.mu.Lock()
	if gen == e.gen && !e.closed {
		e.gen--
	}
	e.mu.Unlock()
}

func newTap() *audio.Tap { return audio.NewTap(analysis.FFTSize) }

// SelectMicrophone opens the capture device and makes it the only analyzed
// source. On failure the engine stays in its previous mode.
func (e *Engine) SelectMicrophone(ctx context.Context) error {
	gen, err := e.nextGen()
	if err != nil {
		return err
	}

	tap := newTap()
	stream, err := e.capturer.Open(ctx, tap)
	if err != nil {
		e.abandon(gen)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		e.log.Warn("microphone unavailable", "error", err)
		return fmt.Errorf("%w: %w", ErrDeviceAccessDenied, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen || e.closed {
		e.log.Debug("discarding stale microphone acquisition", "generation", gen)
		if err := stream.Close(); err != nil {
			e.log.Warn("failed to close capture stream", "error", err)
		}
		return ErrSuperseded
	}

	e.teardownLocked()
	e.mic = stream
	e.source = sourceMic
	e.analyzer.Connect(tap)
	e.log.Info("microphone selected")

	return nil
}

// SelectFile decodes raw and starts playing it from the beginning. Bytes
// that cannot be decoded play through the fallback transport without a
// waveform profile; that is not an error. An error is returned only when
// both paths fail, the request was superseded, or the output cannot start.
// In the last case the file stays loaded and paused.
func (e *Engine) SelectFile(ctx context.Context, raw []byte) error {
	gen, err := e.nextGen()
	if err != nil {
		return err
	}

	tap := newTap()
	var (
		tr      playback.Transport
		profile *waveform.Profile
	)

	buf, err := e.decode(ctx, raw)
	switch {
	case err == nil:
		tr = playback.NewBufferTransport(buf, e.out, tap)
		profile = waveform.Summarize(buf.Channel(0), e.profileOptions()...)
	case ctx.Err() != nil:
		e.abandon(gen)
		return ctx.Err()
	default:
		e.log.Info("decode failed, using streamed playback", "error", err)
		fb, fbErr := e.fallback(ctx, raw, e.out, tap)
		if fbErr != nil {
			e.abandon(gen)
			e.log.Warn("streamed playback unavailable", "error", fbErr)
			return fmt.Errorf("%w: %w", ErrDecodeFailure, errors.Join(err, fbErr))
		}
		tr = fb
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen || e.closed {
		e.log.Debug("discarding stale file acquisition", "generation", gen)
		if err := tr.Close(); err != nil {
			e.log.Warn("failed to close transport", "error", err)
		}
		return ErrSuperseded
	}

	e.teardownLocked()
	var tracker *playback.Tracker
	opts := []playback.TrackerOption{
		playback.WithLogger(e.log),
		playback.OnEnded(func() { e.trackEnded(tracker) }),
	}
	if e.clock != nil {
		opts = append(opts, playback.WithClock(e.clock))
	}
	tracker = playback.NewTracker(tr, opts...)
	e.tracker = tracker
	e.profile = profile
	e.source = sourceFile
	e.analyzer.Connect(tap)

	if err := e.tracker.Play(0); err != nil {
		return err
	}
	e.log.Info("file selected", "duration", tr.Duration(), "profile", profile != nil)

	return nil
}

func (e *Engine) profileOptions() []waveform.Option {
	if e.cfg.TruePeak {
		return []waveform.Option{waveform.WithTruePeak()}
	}
	return nil
}

// trackEnded runs when tr reaches the end of its media. Notifications from a
// tracker that was already replaced are dropped.
func (e *Engine) trackEnded(tr *playback.Tracker) {
	e.mu.Lock()
	current := tr != nil && tr == e.tracker
	hook := e.onEnded
	e.mu.Unlock()

	if !current {
		return
	}
	e.log.Info("track finished")
	if hook != nil {
		hook()
	}
}

// teardownLocked disconnects and releases the active source.
func (e *Engine) teardownLocked() {
	e.analyzer.Disconnect()

	if e.mic != nil {
		if err := e.mic.Close(); err != nil {
			e.log.Warn("failed to close capture stream", "error", err)
		}
		e.mic = nil
	}
	if e.tracker != nil {
		if err := e.tracker.Close(); err != nil {
			e.log.Warn("failed to close transport", "error", err)
		}
		e.tracker = nil
	}

	e.profile = nil
	e.scrub = ScrubState{}
	e.source = sourceNone
	e.history.Reset()
	e.bands.Reset()
}

// TogglePlayPause pauses or resumes the loaded file.
func (e *Engine) TogglePlayPause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tracker == nil {
		return ErrNoActiveSource
	}
	return e.tracker.Toggle()
}

// Seek moves the loaded file to progress in [0,1].
func (e *Engine) Seek(progress float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.seekLocked(progress)
}

func (e *Engine) seekLocked(progress float64) error {
	if err := e.seekableLocked(progress); err != nil {
		return err
	}
	return e.tracker.Seek(progress)
}

func (e *Engine) seekableLocked(progress float64) error {
	if e.tracker == nil || e.tracker.Duration() <= 0 || math.IsNaN(progress) {
		return ErrInvalidSeekTarget
	}
	return nil
}

// Mode returns the controller state.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.modeLocked()
}

func (e *Engine) modeLocked() Mode {
	switch e.source {
	case sourceMic:
		return Microphone
	case sourceFile:
		if e.tracker.Paused() {
			return FilePaused
		}
		return FilePlaying
	default:
		return Idle
	}
}

// Profile returns the waveform profile of the loaded file, or nil.
func (e *Engine) Profile() *waveform.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile
}

// Position returns the playback position and duration in seconds.
func (e *Engine) Position() (position, duration float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tracker == nil {
		return 0, 0
	}
	return e.tracker.Position(), e.tracker.Duration()
}

// DisplayProgress returns the pending scrub target while dragging and the
// playback progress otherwise.
func (e *Engine) DisplayProgress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.displayProgressLocked()
}

func (e *Engine) displayProgressLocked() float64 {
	if e.scrub.Dragging && e.scrub.Pending != nil {
		return *e.scrub.Pending
	}
	if e.tracker == nil {
		return 0
	}
	return e.tracker.Progress()
}

// Tick samples the analyzer once, advances the band smoothing and returns
// the frame to render. With no source connected the bands decay toward zero
// and the sample fields are empty.
func (e *Engine) Tick() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := Frame{Mode: e.modeLocked()}

	freq, err := e.analyzer.FrequencyData()
	if err != nil {
		f.Bands = e.bands.Update(nil)
		return f
	}
	td, _ := e.analyzer.TimeDomainData()

	f.Bands = e.bands.Update(freq)
	f.Frequency = freq
	f.TimeDomain = td
	f.Left, f.Right = analysis.SideBars(freq, e.cfg.BarCount)

	if e.profile == nil {
		e.history.Push(td)
		f.History = e.history.Values()
	}
	f.HasProfile = e.profile != nil

	if e.tracker != nil {
		f.Duration = e.tracker.Duration()
		f.Position = e.tracker.Position()
		f.Scrubbing = e.scrub.Dragging
		f.Progress = e.displayProgressLocked()
		shown := f.Position
		if f.Scrubbing && f.Duration > 0 {
			shown = f.Progress * f.Duration
		}
		f.Timer = playback.FormatTime(shown) + " / " + playback.FormatTime(f.Duration)
	}

	return f
}

// Close releases the active source. Pending acquisitions complete with
// ErrSuperseded.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.gen++
	e.teardownLocked()

	return nil
}
