//go:build onnx && cgo

// MODUL: onnx/register
// ZWECK: Registriert die ONNX-Factory in der globalen Modell-Registry
// INPUT: Keine
// OUTPUT: Keine
// NEBENEFFEKTE: Registriert ".onnx" Factory bei Package-Import
// ABHAENGIGKEITEN: vision (DefaultRegistry)
// HINWEISE: Import mit _ "github.com/chishi/forge/vision/onnx"

package onnx

import (
	"github.com/chishi/forge/vision"
)

func init() {
	vision.RegisterFactory(".onnx", Open)
}
