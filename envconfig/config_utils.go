// config_utils.go - Utility-Funktionen und Export fuer Konfiguration
//
// Dieses Modul enthaelt:
// - BoolWithDefault/Bool: Boolean-Getter mit Default-Wert
// - String/StringWithDefault: String-Getter
// - Uint/Uint64/Float: Zahlen-Getter mit Default-Wert
// - EnvVar: Struktur fuer Environment-Variablen-Info
// - AsMap: Gibt alle Konfigurationen als Map zurueck
// - Values: Gibt alle Konfigurationswerte als String-Map zurueck
package envconfig

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
)

// =============================================================================
// Boolean-Getter
// =============================================================================

// BoolWithDefault gibt eine Funktion zurueck, die einen Bool mit Default-Wert liest
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool gibt eine Funktion zurueck, die einen Bool liest (Default: false)
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// =============================================================================
// String-Getter
// =============================================================================

// String gibt eine Funktion zurueck, die einen String liest
func String(s string) func() string {
	return func() string {
		return Var(s)
	}
}

// StringWithDefault gibt eine Funktion zurueck, die einen String mit Default liest
func StringWithDefault(key, defaultValue string) func() string {
	return func() string {
		if s := Var(key); s != "" {
			return s
		}
		return defaultValue
	}
}

// =============================================================================
// Zahlen-Getter
// =============================================================================

// Uint gibt eine Funktion zurueck, die einen uint mit Default-Wert liest
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// Uint64 gibt eine Funktion zurueck, die einen uint64 mit Default-Wert liest
func Uint64(key string, defaultValue uint64) func() uint64 {
	return func() uint64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

// Float gibt eine Funktion zurueck, die einen float64 mit Default-Wert liest.
// Negative, NaN und unendliche Werte werden verworfen.
func Float(key string, defaultValue float64) func() float64 {
	return func() float64 {
		if s := Var(key); s != "" {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return f
			}
		}
		return defaultValue
	}
}

// =============================================================================
// Export-Strukturen und -Funktionen
// =============================================================================

// EnvVar repraesentiert eine Environment-Variable mit Metadaten
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"FORGE_DEBUG":               {"FORGE_DEBUG", LogLevel(), "Show additional debug information (e.g. FORGE_DEBUG=1)"},
		"FORGE_HOST":                {"FORGE_HOST", Host(), "IP Address for the forge server (default 127.0.0.1:11480)"},
		"FORGE_ORIGINS":             {"FORGE_ORIGINS", AllowedOrigins(), "A comma separated list of allowed origins"},
		"FORGE_ALLOWED_HOSTS":       {"FORGE_ALLOWED_HOSTS", AllowedHosts(), "A comma separated list of extra Host headers accepted on loopback (e.g. *.lan.example)"},
		"FORGE_MODELS":              {"FORGE_MODELS", Models(), "The path to the models directory"},
		"FORGE_MODEL":               {"FORGE_MODEL", Model(), "Default upscaling model (default RealESRGAN_x4plus)"},
		"FORGE_TILE_SIZE":           {"FORGE_TILE_SIZE", TileSize(), "Fixed tile edge in pixels (default 0, adaptive)"},
		"FORGE_NUM_THREADS":         {"FORGE_NUM_THREADS", NumThreads(), "Intra-op threads for the inference runtime (default 0, auto)"},
		"FORGE_GPU":                 {"FORGE_GPU", UseGPU(), "Use the CUDA execution provider when available"},
		"FORGE_RUNTIME_LIBRARY":     {"FORGE_RUNTIME_LIBRARY", RuntimeLibrary(), "Path to the onnxruntime shared library"},
		"FORGE_NUM_PARALLEL":        {"FORGE_NUM_PARALLEL", NumParallel(), "Maximum number of concurrent engine runs"},
		"FORGE_MAX_FILE_SIZE":       {"FORGE_MAX_FILE_SIZE", MaxFileSize(), "Maximum input size in bytes (default 768 MiB)"},
		"FORGE_CORRUPT_MIN_PERCENT": {"FORGE_CORRUPT_MIN_PERCENT", CorruptMinPercent(), "Lowest corruption fraction (default 0.00001)"},
		"FORGE_CORRUPT_MAX_PERCENT": {"FORGE_CORRUPT_MAX_PERCENT", CorruptMaxPercent(), "Highest corruption fraction (default 0.01)"},
	}
}

// Values gibt alle Konfigurationswerte als String-Map zurueck
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
