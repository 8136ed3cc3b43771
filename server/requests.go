// SPDX-License-Identifier: EPL-2.0

package server

// Request bodies for WebSocket commands, checked with validator tags.

// ProgressRequest is the body of seek, scrub_begin and scrub_update.
type ProgressRequest struct {
	Progress *float64 `json:"progress" validate:"required,gte=0,lte=1"`
}

// LoadRequest is the body of load.
type LoadRequest struct {
	Name string `json:"name" validate:"required,max=1024"`
}
