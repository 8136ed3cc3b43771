// SPDX-License-Identifier: EPL-2.0

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ik5/audvis/config"
	"github.com/ik5/audvis/engine"
	"github.com/ik5/audvis/library"
	"github.com/ik5/audvis/waveform"
)

// Engine is the part of the engine the server drives.
type Engine interface {
	SelectMicrophone(ctx context.Context) error
	SelectFile(ctx context.Context, raw []byte) error
	TogglePlayPause() error
	Seek(progress float64) error
	BeginScrub(progress float64) error
	UpdateScrub(progress float64)
	EndScrub() error
	CancelScrub()
	Mode() engine.Mode
	Profile() *waveform.Profile
	Tick() engine.Frame
}

// Option configures a Server.
type Option func(*Server)

// WithLibrary enables the load command and GET /tracks.
func WithLibrary(f library.Fetcher) Option {
	return func(s *Server) { s.lib = f }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// Server serves frames and commands for one engine.
type Server struct {
	eng       Engine
	lib       library.Fetcher
	listen    string
	tick      time.Duration
	maxUpload int64
	log       *slog.Logger
	upgrader  *websocket.Upgrader
	frames    *hub
}

// New builds a server for eng using the server section of cfg.
func New(eng Engine, cfg *config.Config, opts ...Option) *Server {
	rate := cfg.Server.TickRate
	if rate <= 0 {
		rate = config.DefaultTickRate
	}

	s := &Server{
		eng:       eng,
		listen:    cfg.Server.Listen,
		tick:      time.Second / time.Duration(rate),
		maxUpload: cfg.MaxUploadBytes(),
		log:       slog.Default(),
		frames:    newHub(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = newUpgrader(cfg.Server.AllowedOrigins, s.log)

	return s
}

// frameMessage is the frame pushed on every tick.
type frameMessage struct {
	Type string `json:"type"`
	engine.Frame
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /waveform", s.handleWaveform)
	mux.HandleFunc("GET /tracks", s.handleTracks)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Run ticks the engine and serves HTTP until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.listen)
		errCh <- srv.ListenAndServe()
	}()
	go s.tickLoop(ctx)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.publishFrame()
		}
	}
}

// publishFrame advances the engine one tick and fans the frame out.
func (s *Server) publishFrame() {
	s.frames.publish(s.eng.Tick())
}

// handleWebSocket pushes frames and answers commands until the client goes
// away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("WebSocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	frames, unsubscribe := s.frames.subscribe()
	defer unsubscribe()

	send := make(chan any, 32)
	done := make(chan struct{})

	go s.runReader(ctx, conn, responder{send: send, log: s.log}, done)
	s.runWriter(conn, send, frames, done)
}

// runWriter is the only goroutine writing to conn.
func (s *Server) runWriter(conn WebSocketConn, send <-chan any, frames <-chan engine.Frame, done <-chan struct{}) {
	defer func() {
		if err := conn.Close(); err != nil {
			s.log.Debug("WebSocket close error", "error", err)
		}
	}()

	for {
		var msg any
		select {
		case <-done:
			return
		case msg = <-send:
		case f := <-frames:
			msg = frameMessage{Type: "frame", Frame: f}
		}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (s *Server) runReader(ctx context.Context, conn WebSocketConn, r responder, done chan<- struct{}) {
	defer func() {
		if p := recover(); p != nil {
			s.log.Error("panic in WebSocket reader", "panic", p)
		}
		close(done)
	}()

	for {
		var cmd WSCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		s.handle(ctx, cmd, r)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("empty upload"))
		return
	}

	if err := s.eng.SelectFile(r.Context(), raw); err != nil {
		s.log.Warn("upload rejected", "bytes", len(raw), "error", err)
		writeError(w, uploadStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, modeResult{Mode: s.eng.Mode().String()})
}

func uploadStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrDecodeFailure):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, engine.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, engine.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleWaveform(w http.ResponseWriter, _ *http.Request) {
	p := s.eng.Profile()
	if p == nil {
		writeError(w, http.StatusNotFound, errors.New("no waveform profile"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": p})
}

func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	if s.lib == nil {
		writeError(w, http.StatusNotFound, ErrNoLibrary)
		return
	}
	names, err := s.lib.List(r.Context())
	if err != nil {
		s.log.Error("failed to list tracks", "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": names})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"mode":    s.eng.Mode().String(),
		"clients": s.frames.len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
