// Package api - Typen der forge REST API.
// Enthaelt: StatusError, Anfrage- und Antwort-Typen fuer Upscale, Corrupt und Modelle
package api

import (
	"fmt"
)

// StatusError is an error with an HTTP status code, message and an
// optional machine readable code (e.g. "NO_PAYLOAD_REGION").
type StatusError struct {
	StatusCode   int
	Status       string
	ErrorMessage string `json:"error"`
	Code         string `json:"code,omitempty"`
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		// this should not happen
		return "something went wrong, please see the forge server logs for details"
	}
}

// ErrorResponse is the body of a failed request or the last line of a
// failed stream.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Status values of a [ProgressResponse].
const (
	StatusStart     = "start"
	StatusProgress  = "progress"
	StatusDone      = "done"
	StatusCancelled = "cancelled"
)

// UpscaleRequest is the request passed to [Client.Upscale].
type UpscaleRequest struct {
	// Image is the encoded source image (PNG, JPEG, WebP, GIF or BMP).
	Image []byte `json:"image"`

	// Scale is the target factor, one of 1, 2, 3, 4 or 16.
	Scale int `json:"scale"`

	// Model is a registered model name or a model path on the server.
	// Empty selects FORGE_MODEL.
	Model string `json:"model,omitempty"`

	// TileSize overrides the adaptive tile edge (0 = adaptive).
	TileSize int `json:"tile_size,omitempty"`

	// Format selects the output encoding ("png", "jpeg", "bmp"); empty
	// keeps the input format where an encoder exists.
	Format string `json:"format,omitempty"`
}

// CorruptRequest describes a corruption run. The container bytes are sent
// as the raw request body.
type CorruptRequest struct {
	// Percent is the fraction of payload bytes to modify, clamped by the
	// server to FORGE_CORRUPT_MIN_PERCENT..FORGE_CORRUPT_MAX_PERCENT.
	Percent float64 `json:"percent"`
}

// ProgressResponse is one line of an upscale or corrupt stream.
type ProgressResponse struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`

	// upscale, nur bei "done"
	Image  []byte `json:"image,omitempty"`
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`

	// corrupt, nur bei "done"
	Data     []byte  `json:"data,omitempty"`
	Percent  float64 `json:"percent,omitempty"`
	Regions  int     `json:"regions,omitempty"`
	Planned  int     `json:"planned,omitempty"`
	Modified int     `json:"modified,omitempty"`
}

// ModelResponse describes a known upscaling model.
type ModelResponse struct {
	Name        string `json:"name"`
	File        string `json:"file"`
	Description string `json:"description,omitempty"`
	Scale       int    `json:"scale"`
	Available   bool   `json:"available"`
	Loaded      bool   `json:"loaded"`
}

// ListResponse is the response from [Client.List].
type ListResponse struct {
	Models []ModelResponse `json:"models"`
}
