// SPDX-License-Identifier: EPL-2.0

// Package library resolves track names to raw file bytes, either from a
// local directory or from an S3 compatible bucket.
package library

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	ErrNotFound    = errors.New("track not found")
	ErrInvalidName = errors.New("invalid track name")
	ErrTooLarge    = errors.New("track exceeds size limit")
)

// Fetcher loads tracks by name.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
}

// DefaultMaxBytes caps a fetched track.
const DefaultMaxBytes = 200 << 20

// ValidateName rejects empty names, absolute paths and traversal.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: is required", ErrInvalidName)
	}
	if strings.Contains(name, "..") || strings.ContainsRune(name, '\\') {
		return fmt.Errorf("%w: %q cannot contain '..' or '\\'", ErrInvalidName, name)
	}
	if strings.HasPrefix(name, "/") {
		return fmt.Errorf("%w: %q must be relative", ErrInvalidName, name)
	}
	if cleaned := path.Clean(name); cleaned != name || cleaned == "." {
		return fmt.Errorf("%w: %q is not a clean path", ErrInvalidName, name)
	}
	return nil
}

var audioExtensions = map[string]bool{
	".wav":  true,
	".wave": true,
	".mp3":  true,
	".ogg":  true,
	".oga":  true,
	".aif":  true,
	".aiff": true,
	".flac": true,
	".m4a":  true,
	".aac":  true,
	".opus": true,
	".webm": true,
}

// IsAudioName reports whether name has an extension worth listing. Formats
// outside the built-in decoders still play through the streamed fallback.
func IsAudioName(name string) bool {
	return audioExtensions[strings.ToLower(path.Ext(name))]
}
