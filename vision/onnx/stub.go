//go:build !(onnx && cgo)

// MODUL: onnx/stub
// ZWECK: Stub wenn ohne Tag "onnx" oder ohne CGO gebaut wird
// HINWEISE: .onnx Modelle lassen sich dann nicht laden, alles andere
//           (Korruption, Server, CLI) funktioniert weiter

package onnx

import (
	"errors"

	"github.com/chishi/forge/vision"
)

// ErrCGORequired wird zurueckgegeben wenn die Runtime nicht eingebaut ist
var ErrCGORequired = errors.New("onnx: built without onnx runtime (requires -tags onnx and CGO)")

func init() {
	vision.RegisterFactory(".onnx", Open)
}

// Open Stub - gibt immer ErrCGORequired zurueck
func Open(path string, spec vision.ModelSpec, opts vision.LoadOptions) (vision.Model, error) {
	return nil, ErrCGORequired
}

// InitRuntime Stub
func InitRuntime() error {
	return ErrCGORequired
}

// DestroyRuntime Stub
func DestroyRuntime() error {
	return nil
}
