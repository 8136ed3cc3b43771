// SPDX-License-Identifier: EPL-2.0

package server

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ik5/audvis/config"
)

// WSCommand is a command received from a WebSocket client.
type WSCommand struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Result answers a command.
type Result struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Success bool   `json:"success"`
	Error   any    `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// responder sends command results to one connection.
type responder struct {
	send chan<- any
	log  *slog.Logger
}

// decodeAndValidate decodes the command body into data and validates it.
// It reports false after sending the error result.
func decodeAndValidate[T any](r responder, cmd WSCommand, data *T) bool {
	if len(cmd.Data) == 0 {
		cmd.Data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(cmd.Data, data); err != nil {
		r.error(cmd, fmt.Errorf("invalid JSON: %w", err))
		return false
	}

	if err := config.Validator().Struct(data); err != nil {
		r.result(cmd, Result{Error: config.NewValidationError(err)})
		return false
	}

	return true
}

func (r responder) success(cmd WSCommand, data any) {
	r.result(cmd, Result{Success: true, Data: data})
}

func (r responder) error(cmd WSCommand, err error) {
	r.result(cmd, Result{Error: err.Error()})
}

func (r responder) result(cmd WSCommand, res Result) {
	res.Type = cmd.Type + "_result"
	res.ID = cmd.ID
	r.trySend(cmd.Type, res)
}

// trySend drops the message when the connection is not keeping up.
func (r responder) trySend(cmdType string, msg any) {
	select {
	case r.send <- msg:
	default:
		r.log.Warn("failed to send response: channel full", "type", cmdType)
	}
}
