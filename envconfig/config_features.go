// config_features.go - Engine-Einstellungen
//
// Dieses Modul enthaelt:
// - Modell- und Inference-Einstellungen (Modell, Tiles, Threads, GPU)
// - Parallelitaets-Einstellungen fuer den Server
// - Grenzwerte fuer die Korruptions-Engine
package envconfig

// =============================================================================
// Modell- und Inference-Einstellungen
// =============================================================================

var (
	// Model ist der Standard-Modellname fuer Upscaling
	Model = StringWithDefault("FORGE_MODEL", "RealESRGAN_x4plus")

	// TileSize ueberschreibt die adaptive Tile-Groesse (0 = automatisch)
	TileSize = Uint("FORGE_TILE_SIZE", 0)

	// NumThreads setzt die Intra-Op Threads der ONNX Runtime (0 = auto)
	NumThreads = Uint("FORGE_NUM_THREADS", 0)

	// UseGPU aktiviert den CUDA Execution Provider (Fallback auf CPU)
	UseGPU = Bool("FORGE_GPU")

	// RuntimeLibrary ist der Pfad zur onnxruntime Shared Library
	RuntimeLibrary = String("FORGE_RUNTIME_LIBRARY")
)

// =============================================================================
// Parallelitaets-Einstellungen
// =============================================================================

var (
	// NumParallel setzt die Anzahl gleichzeitiger Engine-Laeufe im Server
	NumParallel = Uint("FORGE_NUM_PARALLEL", 1)
)

// =============================================================================
// Korruptions-Grenzwerte
// =============================================================================

var (
	// MaxFileSize begrenzt die Eingabegroesse (Default 768 MiB)
	MaxFileSize = Uint64("FORGE_MAX_FILE_SIZE", 768<<20)

	// CorruptMinPercent ist der kleinste erlaubte Anteil (als Bruch)
	CorruptMinPercent = Float("FORGE_CORRUPT_MIN_PERCENT", 0.00001)

	// CorruptMaxPercent ist der groesste erlaubte Anteil (als Bruch)
	CorruptMaxPercent = Float("FORGE_CORRUPT_MAX_PERCENT", 0.01)
)
