// MODUL: factory
// ZWECK: Modell-Interface und Factory-Typ fuer Upscaling-Backends
// INPUT: Modell-Pfad, ModelSpec, LoadOptions
// OUTPUT: Model (upscale.Backend mit Lebenszyklus)
// NEBENEFFEKTE: Factories laden Modell-Dateien und allozieren Runtime-Speicher
// ABHAENGIGKEITEN: upscale (Backend-Interface)
// HINWEISE: Factories registrieren sich per init() nach Datei-Endung

package vision

import (
	"errors"

	"github.com/chishi/forge/upscale"
)

var (
	ErrUnknownModel  = errors.New("vision: unknown model")
	ErrModelNotFound = errors.New("vision: model file not found")
	ErrNoFactory     = errors.New("vision: no loader for model format")
)

// Model ist eine geladene Inference-Session fuer den Compositor.
type Model interface {
	upscale.Backend
	Close() error
	Info() ModelInfo
}

// ModelInfo enthaelt Metadaten ueber ein geladenes Modell.
type ModelInfo struct {
	Name     string // Modell-Name
	Path     string // Datei
	Scale    int    // Nativer Faktor
	Provider string // "cpu" oder "cuda" nach Fallback
	Float16  bool   // Modell erwartet float16 Tensoren
}

// ModelFactory oeffnet ein Modell. spec.Scale 0 heisst unbekannt; die
// Factory ermittelt den Faktor dann selbst.
type ModelFactory func(path string, spec ModelSpec, opts LoadOptions) (Model, error)
