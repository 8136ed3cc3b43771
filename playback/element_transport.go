// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"sync"

	"github.com/ik5/audvis/audio"
)

const (
	DefaultFFmpegPath  = "ffmpeg"
	DefaultFFprobePath = "ffprobe"
)

// ElementOption configures an ElementTransport.
type ElementOption func(*ElementTransport)

// WithFFmpegPath sets the ffmpeg binary used for playback.
func WithFFmpegPath(path string) ElementOption {
	return func(t *ElementTransport) { t.ffmpeg = path }
}

// WithFFprobePath sets the ffprobe binary used to read the duration.
func WithFFprobePath(path string) ElementOption {
	return func(t *ElementTransport) { t.ffprobe = path }
}

// WithElementLogger sets the logger for ffmpeg diagnostics.
func WithElementLogger(l *slog.Logger) ElementOption {
	return func(t *ElementTransport) { t.log = l }
}

// ElementTransport plays an encoded file by piping it through ffmpeg, which
// emits float32 PCM at the output's rate and channel count. Each Start runs
// a fresh process seeked to the offset.
type ElementTransport struct {
	mu       sync.Mutex
	raw      []byte
	out      Output
	tap      *audio.Tap
	ffmpeg   string
	ffprobe  string
	log      *slog.Logger
	duration float64
	proc     *process
}

// NewElementTransport probes raw with ffprobe. It fails when ffprobe cannot
// read the input at all; a container without a duration yields Duration 0.
func NewElementTransport(ctx context.Context, raw []byte, out Output, tap *audio.Tap, opts ...ElementOption) (*ElementTransport, error) {
	t := &ElementTransport{
		raw:     raw,
		out:     out,
		tap:     tap,
		ffmpeg:  DefaultFFmpegPath,
		ffprobe: DefaultFFprobePath,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}

	d, err := probeDuration(ctx, t.ffprobe, raw)
	if err != nil {
		return nil, err
	}
	t.duration = d

	return t, nil
}

func (t *ElementTransport) Duration() float64 { return t.duration }

// Start launches ffmpeg seeked to offset and hands its output to the device.
// A process from an earlier Start is stopped once the new one is playing.
func (t *ElementTransport) Start(offset float64, onEnd func()) error {
	rate, channels := t.out.SampleRate(), t.out.Channels()
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", strconv.FormatFloat(offset, 'f', 3, 64),
		"-i", "pipe:0",
		"-vn",
		"-f", "f32le",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(rate),
		"pipe:1",
	}

	proc, err := startProcess(t.ffmpeg, args, t.raw)
	if err != nil {
		return err
	}

	var src audio.Source = newPCMSource(proc.stdout, rate, channels)
	if t.tap != nil {
		src = t.tap.Wrap(src)
	}
	if err := t.out.Start(src, onEnd); err != nil {
		proc.stop()
		return err
	}

	t.mu.Lock()
	old := t.proc
	t.proc = proc
	t.mu.Unlock()

	if old != nil {
		old.stop()
	}
	return nil
}

func (t *ElementTransport) Stop() {
	t.out.Stop()

	t.mu.Lock()
	proc := t.proc
	t.proc = nil
	t.mu.Unlock()

	if proc != nil {
		if msg := proc.stop(); msg != "" {
			t.log.Debug("ffmpeg stderr", "output", msg)
		}
	}
}

func (t *ElementTransport) Close() error {
	t.Stop()
	return nil
}

type process struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	stdout io.ReadCloser
	stderr *bytes.Buffer
	once   sync.Once
}

// startProcess launches path with args, feeding input on stdin.
func startProcess(path string, args []string, input []byte) (*process, error) {
	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(input)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	return &process{cmd: cmd, cancel: cancel, stdout: stdout, stderr: &stderr}, nil
}

// stop kills the process, reaps it and returns its stderr output.
func (p *process) stop() string {
	p.once.Do(func() {
		p.cancel()
		_ = p.cmd.Wait()
	})
	return p.stderr.String()
}

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func probeDuration(ctx context.Context, ffprobe string, raw []byte) (float64, error) {
	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		"pipe:0",
	)
	cmd.Stdin = bytes.NewReader(raw)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbeDuration(out)
}

func parseProbeDuration(out []byte) (float64, error) {
	var res probeResult
	if err := json.Unmarshal(out, &res); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}

	d, err := strconv.ParseFloat(res.Format.Duration, 64)
	if err != nil || math.IsNaN(d) || d < 0 {
		// "N/A" or missing: the stream is playable but unbounded.
		return 0, nil
	}
	return d, nil
}

// pcmChunkFrames is the frame count the pump converts per read; at most
// pcmQueueChunks converted chunks wait for the output.
const (
	pcmChunkFrames = 1024
	pcmQueueChunks = 32
)

// pcmSource decodes interleaved little-endian float32 samples. A pump
// goroutine drains the pipe into a bounded queue so ReadSamples never blocks
// on ffmpeg: while the process is still catching up (decoding up to a seek
// offset, say) it returns silence.
type pcmSource struct {
	closer   io.Closer
	rate     int
	channels int

	chunks chan []float32
	done   chan struct{}
	pumped chan struct{}
	once   sync.Once
	cur    []float32
	err    error // written by pump before chunks is closed
}

func newPCMSource(rc io.ReadCloser, rate, channels int) *pcmSource {
	s := &pcmSource{
		closer:   rc,
		rate:     rate,
		channels: channels,
		chunks:   make(chan []float32, pcmQueueChunks),
		done:     make(chan struct{}),
		pumped:   make(chan struct{}),
	}
	go s.pump(rc)
	return s
}

func (s *pcmSource) pump(r io.Reader) {
	defer close(s.pumped)
	defer close(s.chunks)

	frameBytes := 4 * s.channels
	buf := make([]byte, pcmChunkFrames*frameBytes)
	carry := 0

	for {
		n, err := r.Read(buf[carry:])
		n += carry
		whole := n - n%frameBytes
		if whole > 0 {
			chunk := make([]float32, whole/4)
			for i := range chunk {
				chunk[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
			}
			select {
			case s.chunks <- chunk:
			case <-s.done:
				return
			}
		}
		carry = copy(buf, buf[whole:n])

		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			return
		}
	}
}

func (s *pcmSource) SampleRate() int { return s.rate }
func (s *pcmSource) Channels() int   { return s.channels }
func (s *pcmSource) BufSize() int    { return 4096 }

func (s *pcmSource) Close() error {
	s.once.Do(func() { close(s.done) })
	return s.closer.Close()
}

// ReadSamples fills dst from the queue. An empty queue with ffmpeg still
// running yields silence; io.EOF is reported only after the pump drained.
func (s *pcmSource) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	n := 0
	for n < len(dst) {
		if len(s.cur) == 0 {
			select {
			case chunk, ok := <-s.chunks:
				if !ok {
					if s.err != nil {
						return n, s.err
					}
					return n, io.EOF
				}
				s.cur = chunk
			default:
				clear(dst[n:])
				return len(dst), nil
			}
		}
		k := copy(dst[n:], s.cur)
		s.cur = s.cur[k:]
		n += k
	}
	return n, nil
}
