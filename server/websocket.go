// SPDX-License-Identifier: EPL-2.0

package server

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gorilla/websocket"
)

// WebSocketConn is the part of a WebSocket connection the loops use.
type WebSocketConn interface {
	io.Closer
	WriteJSON(v any) error
	ReadJSON(v any) error
}

// maxMessageSize bounds inbound command messages.
const maxMessageSize = 64 << 10

func newUpgrader(allowed []string, log *slog.Logger) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 16384,
		CheckOrigin: func(r *http.Request) bool {
			return checkOrigin(r, allowed, log)
		},
	}
}

// checkOrigin accepts same-origin and local requests, plus any origin listed
// in allowed.
func checkOrigin(r *http.Request, allowed []string, log *slog.Logger) bool {
	origin := r.Header.Get("Origin")
	// Same-origin requests omit the Origin header
	if origin == "" {
		return true
	}

	if slices.ContainsFunc(allowed, func(a string) bool {
		return strings.EqualFold(strings.TrimSuffix(a, "/"), origin)
	}) {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		log.Warn("rejected WebSocket connection: invalid origin URL", "origin", origin)
		return false
	}

	host := u.Hostname()
	if host == "localhost" {
		return true
	}

	requestHost := r.Host
	if h, _, err := net.SplitHostPort(requestHost); err == nil {
		requestHost = h
	}
	if host == requestHost {
		return true
	}

	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return true
	}

	log.Warn("rejected WebSocket connection", "origin", origin, "host", host)
	return false
}
