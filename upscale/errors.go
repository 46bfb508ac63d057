package upscale

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrModelNotLoaded: kein oder kein geladenes Inference-Backend
	ErrModelNotLoaded = errors.New("upscale: model not loaded")

	// ErrUnsupportedScale: Zielskalierung nicht erlaubt oder nicht erreichbar
	ErrUnsupportedScale = errors.New("upscale: unsupported scale")

	// ErrEmptyImage: Bild ohne Pixel
	ErrEmptyImage = errors.New("upscale: empty image")

	// ErrInference wird von InferenceError per errors.Is gemeldet
	ErrInference = errors.New("upscale: inference failed")

	// ErrCancelled markiert einen abgebrochenen Lauf. Kein Fehler im
	// eigentlichen Sinn; es gibt kein Ergebnisbild.
	ErrCancelled = fmt.Errorf("upscale: %w", context.Canceled)
)

// InferenceError umschliesst einen Backend-Fehler fuer ein bestimmtes Tile.
type InferenceError struct {
	Tile int
	Err  error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("upscale: inference failed on tile %d: %v", e.Tile, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// Is erlaubt errors.Is(err, ErrInference)
func (e *InferenceError) Is(target error) bool {
	return target == ErrInference
}
