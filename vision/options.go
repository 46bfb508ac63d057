// MODUL: options
// ZWECK: Functional Options fuer das Laden von Upscaling-Modellen
// INPUT: Optionale Parameter (Device, Threads, Tensor-Namen)
// OUTPUT: LoadOptions Struct mit Konfiguration
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: envconfig (Standardwerte aus FORGE_*)
// HINWEISE: GPU ist ein Wunsch, kein Zwang; die Session faellt auf CPU zurueck

package vision

import (
	"errors"

	"github.com/chishi/forge/envconfig"
)

// ============================================================================
// LoadOptions
// ============================================================================

// LoadOptions enthaelt die Konfiguration fuer eine Inference-Session.
type LoadOptions struct {
	Device     string // Compute-Backend: "cpu" oder "cuda"
	DeviceID   int    // GPU-Index bei "cuda"
	Threads    int    // Intra-Op Threads (0 = Runtime entscheidet)
	InputName  string // Name des Eingabe-Tensors
	OutputName string // Name des Ausgabe-Tensors
}

// Option ist eine funktionale Option fuer LoadOptions.
type Option func(*LoadOptions)

const (
	DeviceCPU  = "cpu"
	DeviceCUDA = "cuda"

	// Tensor-Namen der Real-ESRGAN ONNX-Exporte
	DefaultInputName  = "input"
	DefaultOutputName = "output"
)

var (
	ErrInvalidDevice  = errors.New("vision: invalid device")
	ErrInvalidThreads = errors.New("vision: invalid thread count")
	ErrInvalidTensor  = errors.New("vision: tensor name must not be empty")
)

// DefaultLoadOptions liest die Standardwerte aus der Umgebung
// (FORGE_GPU, FORGE_NUM_THREADS).
func DefaultLoadOptions() LoadOptions {
	opts := LoadOptions{
		Device:     DeviceCPU,
		Threads:    int(envconfig.NumThreads()),
		InputName:  DefaultInputName,
		OutputName: DefaultOutputName,
	}
	if envconfig.UseGPU() {
		opts.Device = DeviceCUDA
	}
	return opts
}

// WithDevice setzt das Compute-Backend.
func WithDevice(device string) Option {
	return func(o *LoadOptions) {
		o.Device = device
	}
}

// WithDeviceID waehlt die GPU. Negative Werte werden ignoriert.
func WithDeviceID(id int) Option {
	return func(o *LoadOptions) {
		if id >= 0 {
			o.DeviceID = id
		}
	}
}

// WithThreads setzt die Intra-Op Threads. Werte <= 0 werden ignoriert.
func WithThreads(n int) Option {
	return func(o *LoadOptions) {
		if n > 0 {
			o.Threads = n
		}
	}
}

// WithTensorNames ueberschreibt die Ein- und Ausgabe-Namen fuer
// Exporte mit abweichender Benennung.
func WithTensorNames(input, output string) Option {
	return func(o *LoadOptions) {
		o.InputName = input
		o.OutputName = output
	}
}

// Apply wendet alle Options an.
func (o *LoadOptions) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// Validate prueft ob die LoadOptions gueltig sind.
func (o *LoadOptions) Validate() error {
	switch o.Device {
	case DeviceCPU, DeviceCUDA:
	default:
		return ErrInvalidDevice
	}

	if o.Threads < 0 {
		return ErrInvalidThreads
	}

	if o.InputName == "" || o.OutputName == "" {
		return ErrInvalidTensor
	}

	return nil
}
