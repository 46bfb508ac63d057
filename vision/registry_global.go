// MODUL: registry_global
// ZWECK: Globale DefaultRegistry mit den eingebauten Real-ESRGAN Modellen
// INPUT: ModelSpec, ModelFactory, Modellname
// OUTPUT: Registrierte Modelle, geladene Model-Instanzen
// NEBENEFFEKTE: Aendert globale DefaultRegistry
// ABHAENGIGKEITEN: registry.go (Registry), envconfig (Modell-Verzeichnis)
// HINWEISE: Lade-Factories registrieren sich via init() in ihren Packages

package vision

import "github.com/chishi/forge/envconfig"

// Eingebaute Modelle, beide mit nativem Faktor 4
var builtinModels = []ModelSpec{
	{
		Name:        "RealESRGAN_x4plus",
		File:        "RealESRGAN_x4plus.onnx",
		Description: "general photos",
		Scale:       4,
	},
	{
		Name:        "RealESRGAN_x4plus_anime_6B",
		File:        "RealESRGAN_x4plus_anime_6B.onnx",
		Description: "anime and illustrations",
		Scale:       4,
	},
}

// DefaultRegistry ist die globale Modell-Registry.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, spec := range builtinModels {
		r.Register(spec)
	}
	return r
}

// RegisterFactory registriert eine Factory in der DefaultRegistry.
func RegisterFactory(ext string, factory ModelFactory) {
	if factory == nil {
		panic("vision: nil factory fuer " + ext)
	}
	DefaultRegistry.RegisterFactory(ext, factory)
}

// ListModels gibt alle Modelle der DefaultRegistry zurueck.
func ListModels() []ModelSpec {
	return DefaultRegistry.List()
}

// OpenModel laedt ein Modell aus FORGE_MODELS bzw. vom angegebenen Pfad.
func OpenModel(nameOrPath string, opts ...Option) (Model, error) {
	lo := DefaultLoadOptions()
	lo.Apply(opts...)
	return DefaultRegistry.Open(nameOrPath, envconfig.Models(), lo)
}
