// SPDX-License-Identifier: EPL-2.0

// Command audvis runs the analysis engine on the default audio devices and
// serves its frames to a renderer.
//
// Usage:
//
//	audvis [-config config.json] [-listen host:port] [-mic] [track]
//
// The optional track is looked up in the configured library. Without a
// library it is read from disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gordonklaus/portaudio"

	"github.com/ik5/audvis/config"
	"github.com/ik5/audvis/device"
	"github.com/ik5/audvis/engine"
	"github.com/ik5/audvis/library"
	"github.com/ik5/audvis/server"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (built-in defaults when empty)")
	listen := flag.String("listen", "", "Listen address, overrides the config file")
	mic := flag.Bool("mic", false, "Start with the microphone selected")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *mic, flag.Arg(0)); err != nil {
		log.Error("audvis stopped", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, mic bool, track string) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}
	defer func() {
		if err := portaudio.Terminate(); err != nil {
			log.Warn("portaudio terminate", "error", err)
		}
	}()

	out, err := device.OpenOutput(cfg.Audio.SampleRate, cfg.Audio.FramesPerBuffer, log)
	if err != nil {
		return err
	}
	defer out.Close()

	capture := device.NewCapture(cfg.Audio.SampleRate, cfg.Audio.FramesPerBuffer, log)

	eng := engine.New(out, capture,
		engine.WithConfig(cfg.Engine()),
		engine.WithLogger(log),
		engine.OnTrackEnded(func() { log.Info("playback reached the end") }),
	)
	defer eng.Close()

	lib := newLibrary(cfg)
	opts := []server.Option{server.WithLogger(log)}
	if lib != nil {
		opts = append(opts, server.WithLibrary(lib))
	}

	switch {
	case track != "":
		if err := loadTrack(ctx, eng, lib, track); err != nil {
			log.Warn("initial track not loaded", "track", track, "error", err)
		}
	case mic:
		if err := eng.SelectMicrophone(ctx); err != nil {
			log.Warn("microphone not selected", "error", err)
		}
	}

	return server.New(eng, cfg, opts...).Run(ctx)
}

// newLibrary returns the configured track library, preferring S3.
func newLibrary(cfg *config.Config) library.Fetcher {
	switch {
	case cfg.Library.S3.Bucket != "":
		s3 := cfg.Library.S3
		f := library.NewS3Fetcher(library.S3Options{
			Bucket:          s3.Bucket,
			Region:          s3.Region,
			Endpoint:        s3.Endpoint,
			Prefix:          s3.Prefix,
			AccessKeyID:     s3.AccessKeyID,
			SecretAccessKey: s3.SecretAccessKey,
		})
		f.MaxBytes = cfg.MaxUploadBytes()
		return f
	case cfg.Library.Root != "":
		f := library.NewLocalFetcher(cfg.Library.Root)
		f.MaxBytes = cfg.MaxUploadBytes()
		return f
	default:
		return nil
	}
}

func loadTrack(ctx context.Context, eng *engine.Engine, lib library.Fetcher, track string) error {
	if lib == nil {
		abs, err := filepath.Abs(track)
		if err != nil {
			return err
		}
		lib = library.NewLocalFetcher(filepath.Dir(abs))
		track = filepath.Base(abs)
	}

	raw, err := lib.Fetch(ctx, track)
	if err != nil {
		return err
	}
	return eng.SelectFile(ctx, raw)
}
