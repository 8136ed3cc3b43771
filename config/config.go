// SPDX-License-Identifier: EPL-2.0

// Package config loads the application configuration from JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ik5/audvis/analysis"
	"github.com/ik5/audvis/engine"
	"github.com/ik5/audvis/playback"
	"github.com/ik5/audvis/waveform"
)

// Defaults used for zero-value fields.
const (
	DefaultSampleRate      = 48000
	DefaultFramesPerBuffer = 1024
	DefaultListen          = "127.0.0.1:8090"
	DefaultTickRate        = 60
	DefaultMaxUploadMB     = 200
)

// AnalysisConfig tunes the analyzer and band extractor. Zero values select
// the defaults, so a smoothing of exactly 0 cannot be configured.
type AnalysisConfig struct {
	BandAlpha   float64 `json:"band_alpha" validate:"gt=0,lte=1"`
	Smoothing   float64 `json:"smoothing" validate:"gte=0,lt=1"`
	MinDecibels float64 `json:"min_decibels" validate:"ltfield=MaxDecibels"`
	MaxDecibels float64 `json:"max_decibels" validate:"lte=0"`
	BarCount    int     `json:"bar_count" validate:"gte=1,lte=128"`
}

type WaveformConfig struct {
	TruePeak    bool `json:"true_peak"`
	HistorySize int  `json:"history_size" validate:"gte=1,lte=100000"`
}

// AudioConfig describes the device streams.
type AudioConfig struct {
	SampleRate      int `json:"sample_rate" validate:"oneof=8000 16000 22050 32000 44100 48000 88200 96000"`
	FramesPerBuffer int `json:"frames_per_buffer" validate:"gte=64,lte=8192"`
}

type FFmpegConfig struct {
	FFmpegPath  string `json:"ffmpeg_path" validate:"required"`
	FFprobePath string `json:"ffprobe_path" validate:"required"`
}

type ServerConfig struct {
	Listen         string   `json:"listen" validate:"required,hostname_port"`
	TickRate       int      `json:"tick_rate" validate:"gte=1,lte=240"`
	MaxUploadMB    int      `json:"max_upload_mb" validate:"gte=1,lte=4096"`
	AllowedOrigins []string `json:"allowed_origins" validate:"dive,url"`
}

// S3Config locates tracks in an S3 compatible bucket. The library is only
// enabled when Bucket is set.
type S3Config struct {
	Bucket          string `json:"bucket" validate:"omitempty,max=63"`
	Region          string `json:"region" validate:"required_with=Bucket"`
	Endpoint        string `json:"endpoint" validate:"omitempty,url"`
	Prefix          string `json:"prefix"`
	AccessKeyID     string `json:"access_key_id" validate:"required_with=SecretAccessKey"`
	SecretAccessKey string `json:"secret_access_key" validate:"required_with=AccessKeyID"`
}

type LibraryConfig struct {
	Root string   `json:"root"`
	S3   S3Config `json:"s3"`
}

// Config holds all application configuration.
type Config struct {
	Analysis AnalysisConfig `json:"analysis"`
	Waveform WaveformConfig `json:"waveform"`
	Audio    AudioConfig    `json:"audio"`
	FFmpeg   FFmpegConfig   `json:"ffmpeg"`
	Server   ServerConfig   `json:"server"`
	Library  LibraryConfig  `json:"library"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path, applies defaults and validates the result. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	c := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyDefaults sets default values for zero-value fields.
func (c *Config) applyDefaults() {
	if c.Analysis.BandAlpha == 0 {
		c.Analysis.BandAlpha = analysis.DefaultBandAlpha
	}
	if c.Analysis.Smoothing == 0 {
		c.Analysis.Smoothing = analysis.DefaultSmoothing
	}
	if c.Analysis.MinDecibels == 0 {
		c.Analysis.MinDecibels = analysis.DefaultMinDecibels
	}
	if c.Analysis.MaxDecibels == 0 {
		c.Analysis.MaxDecibels = analysis.DefaultMaxDecibels
	}
	if c.Analysis.BarCount == 0 {
		c.Analysis.BarCount = analysis.DefaultBarCount
	}

	if c.Waveform.HistorySize == 0 {
		c.Waveform.HistorySize = waveform.DefaultHistory
	}

	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = DefaultSampleRate
	}
	if c.Audio.FramesPerBuffer == 0 {
		c.Audio.FramesPerBuffer = DefaultFramesPerBuffer
	}

	if c.FFmpeg.FFmpegPath == "" {
		c.FFmpeg.FFmpegPath = playback.DefaultFFmpegPath
	}
	if c.FFmpeg.FFprobePath == "" {
		c.FFmpeg.FFprobePath = playback.DefaultFFprobePath
	}

	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Server.TickRate == 0 {
		c.Server.TickRate = DefaultTickRate
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = DefaultMaxUploadMB
	}
}

// Engine returns the engine tunables.
func (c *Config) Engine() engine.Config {
	return engine.Config{
		BandAlpha:   c.Analysis.BandAlpha,
		Smoothing:   c.Analysis.Smoothing,
		MinDecibels: c.Analysis.MinDecibels,
		MaxDecibels: c.Analysis.MaxDecibels,
		TruePeak:    c.Waveform.TruePeak,
		HistorySize: c.Waveform.HistorySize,
		BarCount:    c.Analysis.BarCount,
		FFmpegPath:  c.FFmpeg.FFmpegPath,
		FFprobePath: c.FFmpeg.FFprobePath,
	}
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}
