// routes_upscale.go - Upscale-Endpunkt
// Enthaelt: UpscaleHandler - dekodiert, skaliert und streamt den Fortschritt

package server

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/chishi/forge/api"
	"github.com/chishi/forge/envconfig"
	"github.com/chishi/forge/task"
	"github.com/chishi/forge/upscale"
	"github.com/chishi/forge/vision"
)

type upscaleResult struct {
	data   []byte
	format vision.ImageFormat
	width  int
	height int
}

// UpscaleHandler verarbeitet POST /api/upscale. Alle Pruefungen die ohne
// Inference moeglich sind laufen vor dem Stream, damit der HTTP-Status
// stimmt.
func (s *Server) UpscaleHandler(c *gin.Context) {
	var req api.UpscaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %w", errMissingInput, err))
		return
	}

	if len(req.Image) == 0 {
		abortWithError(c, fmt.Errorf("%w: image is required", errMissingInput))
		return
	}

	if !slices.Contains(upscale.DefaultScales, req.Scale) {
		abortWithError(c, fmt.Errorf("%w: %dx", upscale.ErrUnsupportedScale, req.Scale))
		return
	}

	in, err := vision.LoadImageFromBytes(req.Image)
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %w", errInvalidImage, err))
		return
	}

	format := in.Format.OutputFormat()
	if req.Format != "" {
		format = vision.FormatFromName("out." + req.Format)
		if format != vision.FormatPNG && format != vision.FormatJPEG && format != vision.FormatBMP {
			abortWithError(c, fmt.Errorf("%w: output %q", vision.ErrUnsupportedFormat, req.Format))
			return
		}
	}

	name := req.Model
	if name == "" {
		name = envconfig.Model()
	}

	model, err := s.models.Get(name)
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %w", upscale.ErrModelNotLoaded, err))
		return
	}

	if _, err := upscale.PlanFor(model.Scale(), req.Scale); err != nil {
		abortWithError(c, fmt.Errorf("%w (model %s is %dx)", err, model.Info().Name, model.Scale()))
		return
	}

	ctx := c.Request.Context()
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return
	}

	opts := upscale.DefaultOptions()
	opts.TileSize = req.TileSize
	if opts.TileSize <= 0 {
		opts.TileSize = int(envconfig.TileSize())
	}
	comp := upscale.New(model, opts)

	slog.Info("upscale", "model", model.Info().Name, "width", in.Width, "height", in.Height, "scale", req.Scale, "format", format)

	t := task.Start(ctx, func(ctx context.Context, report func(float64)) (upscaleResult, error) {
		defer s.sem.Release(1)

		out, err := comp.Upscale(ctx, in.Image, req.Scale, report)
		if err != nil {
			return upscaleResult{}, err
		}

		data, written, err := vision.EncodeToBytes(out, format)
		if err != nil {
			return upscaleResult{}, err
		}
		return upscaleResult{data: data, format: written, width: out.Bounds().Dx(), height: out.Bounds().Dy()}, nil
	})

	ch := make(chan any)
	go forward(ctx, t, ch, func(r upscaleResult) api.ProgressResponse {
		return api.ProgressResponse{
			Progress: 100,
			Image:    r.data,
			Format:   r.format.String(),
			Width:    r.width,
			Height:   r.height,
		}
	})

	streamResponse(c, ch)
}
