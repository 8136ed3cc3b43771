// SPDX-License-Identifier: EPL-2.0

package server

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoLibrary      = errors.New("no track library configured")
)

type modeResult struct {
	Mode string `json:"mode"`
}

// handle runs one command and answers it through r. Commands that acquire a
// device or load a file complete asynchronously.
func (s *Server) handle(ctx context.Context, cmd WSCommand, r responder) {
	switch cmd.Type {
	case "toggle":
		s.respond(r, cmd, s.eng.TogglePlayPause())

	case "seek":
		var req ProgressRequest
		if decodeAndValidate(r, cmd, &req) {
			s.respond(r, cmd, s.eng.Seek(*req.Progress))
		}

	case "scrub_begin":
		var req ProgressRequest
		if decodeAndValidate(r, cmd, &req) {
			s.respond(r, cmd, s.eng.BeginScrub(*req.Progress))
		}

	case "scrub_update":
		var req ProgressRequest
		if decodeAndValidate(r, cmd, &req) {
			s.eng.UpdateScrub(*req.Progress)
			r.success(cmd, nil)
		}

	case "scrub_end":
		s.respond(r, cmd, s.eng.EndScrub())

	case "scrub_cancel":
		s.eng.CancelScrub()
		r.success(cmd, nil)

	case "microphone":
		s.async(r, cmd, func() error {
			return s.eng.SelectMicrophone(ctx)
		})

	case "load":
		var req LoadRequest
		if !decodeAndValidate(r, cmd, &req) {
			return
		}
		if s.lib == nil {
			r.error(cmd, ErrNoLibrary)
			return
		}
		s.async(r, cmd, func() error {
			raw, err := s.lib.Fetch(ctx, req.Name)
			if err != nil {
				return err
			}
			s.log.Info("loading track", "name", req.Name, "bytes", len(raw))
			return s.eng.SelectFile(ctx, raw)
		})

	default:
		s.log.Warn("unknown WebSocket command", "type", cmd.Type)
		r.error(cmd, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type))
	}
}

func (s *Server) respond(r responder, cmd WSCommand, err error) {
	if err != nil {
		r.error(cmd, err)
		return
	}
	r.success(cmd, modeResult{Mode: s.eng.Mode().String()})
}

// async runs action on its own goroutine with panic recovery.
func (s *Server) async(r responder, cmd WSCommand, action func() error) {
	go func() {
		defer func() {
			if p := recover(); p != nil {
				s.log.Error("panic in async handler", "command", cmd.Type, "panic", p)
				r.error(cmd, errors.New("internal error"))
			}
		}()

		err := action()
		if err != nil {
			s.log.Warn("command failed", "command", cmd.Type, "error", err)
		}
		s.respond(r, cmd, err)
	}()
}
