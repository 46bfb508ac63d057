// Package vision - Bild-Ein-/Ausgabe und Modell-Registry fuer das Upscaling.
//
// MODUL: registry
// ZWECK: Thread-sichere Registry fuer bekannte Modelle und Lade-Factories
// INPUT: ModelSpec, ModelFactory, Modellname oder Pfad
// OUTPUT: Aufgeloeste Modell-Dateien, geladene Model-Instanzen
// NEBENEFFEKTE: Dateisystem-Zugriff bei Resolve/Open
// ABHAENGIGKEITEN: sync, path/filepath (stdlib), factory.go (Model, ModelFactory)
// HINWEISE: Factories sind nach Datei-Endung registriert (".onnx")
package vision

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// ModelSpec beschreibt ein bekanntes Upscaling-Modell.
type ModelSpec struct {
	Name        string `json:"name"`
	File        string `json:"file"`
	Description string `json:"description,omitempty"`
	Scale       int    `json:"scale"`
}

// ============================================================================
// Registry
// ============================================================================

// Registry verwaltet bekannte Modelle und Lade-Factories.
type Registry struct {
	mu        sync.RWMutex
	models    map[string]ModelSpec
	factories map[string]ModelFactory
}

// NewRegistry erstellt eine neue leere Registry.
func NewRegistry() *Registry {
	return &Registry{
		models:    make(map[string]ModelSpec),
		factories: make(map[string]ModelFactory),
	}
}

// Register registriert ein Modell. Existierende Eintraege werden ersetzt.
func (r *Registry) Register(spec ModelSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.models[spec.Name] = spec
}

// Unregister entfernt ein Modell und meldet ob es existierte.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.models[name]
	delete(r.models, name)
	return exists
}

// Get gibt die ModelSpec fuer den Namen zurueck.
func (r *Registry) Get(name string) (ModelSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.models[name]
	return spec, ok
}

// List gibt alle Modelle nach Namen sortiert zurueck.
func (r *Registry) List() []ModelSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]ModelSpec, 0, len(r.models))
	for _, spec := range r.models {
		specs = append(specs, spec)
	}
	slices.SortFunc(specs, func(a, b ModelSpec) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return specs
}

// RegisterFactory registriert eine Factory fuer eine Datei-Endung.
func (r *Registry) RegisterFactory(ext string, factory ModelFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[strings.ToLower(ext)] = factory
}

func (r *Registry) factory(path string) (ModelFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// ============================================================================
// Aufloesung und Laden
// ============================================================================

// Resolve bildet einen Modellnamen oder Pfad auf eine existierende Datei ab.
// Registrierte Namen werden in dir gesucht, alles andere als Pfad behandelt.
func (r *Registry) Resolve(nameOrPath, dir string) (string, ModelSpec, error) {
	if spec, ok := r.Get(nameOrPath); ok {
		path := filepath.Join(dir, spec.File)
		if _, err := os.Stat(path); err != nil {
			return "", spec, fmt.Errorf("%w: %s (%s)", ErrModelNotFound, spec.Name, path)
		}
		return path, spec, nil
	}

	if _, err := os.Stat(nameOrPath); err != nil {
		if os.IsNotExist(err) && !strings.ContainsAny(nameOrPath, `/\`) && filepath.Ext(nameOrPath) == "" {
			return "", ModelSpec{}, fmt.Errorf("%w: %s", ErrUnknownModel, nameOrPath)
		}
		return "", ModelSpec{}, fmt.Errorf("%w: %s", ErrModelNotFound, nameOrPath)
	}

	base := filepath.Base(nameOrPath)
	return nameOrPath, ModelSpec{
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
		File: base,
	}, nil
}

// Open loest das Modell auf und laedt es mit der passenden Factory.
func (r *Registry) Open(nameOrPath, dir string, opts LoadOptions) (Model, error) {
	path, spec, err := r.Resolve(nameOrPath, dir)
	if err != nil {
		return nil, err
	}

	factory, ok := r.factory(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoFactory, filepath.Ext(path))
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return factory(path, spec, opts)
}
