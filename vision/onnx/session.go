//go:build onnx && cgo

// MODUL: onnx/session
// ZWECK: ONNX Runtime Session fuer Super-Resolution-Modelle mit dynamischer Tile-Groesse
// INPUT: Modell-Pfad (.onnx), LoadOptions, CHW-Tensoren eines Tiles
// OUTPUT: Session als vision.Model, hochskalierte CHW-Tensoren
// NEBENEFFEKTE: Alloziert ONNX Runtime Ressourcen, GPU Memory
// ABHAENGIGKEITEN: onnxruntime_go, x448/float16
// HINWEISE: CUDA wird versucht und faellt auf CPU zurueck, float16-Modelle
//           werden transparent konvertiert. Close() MUSS aufgerufen werden.

package onnx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/chishi/forge/envconfig"
	"github.com/chishi/forge/vision"
)

// DefaultScale gilt wenn weder Registry noch Modell den Faktor verraten
const DefaultScale = 4

// ErrSessionClosed: Infer nach Close
var ErrSessionClosed = errors.New("onnx: session closed")

// ============================================================================
// Runtime Initialisierung (Singleton)
// ============================================================================

var (
	runtimeInitOnce sync.Once
	runtimeInitErr  error
)

// InitRuntime initialisiert die ONNX Runtime einmalig.
// FORGE_RUNTIME_LIBRARY ueberschreibt den Pfad zur Shared Library.
func InitRuntime() error {
	runtimeInitOnce.Do(func() {
		if lib := envconfig.RuntimeLibrary(); lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		runtimeInitErr = ort.InitializeEnvironment()
	})
	return runtimeInitErr
}

// DestroyRuntime gibt die ONNX Runtime frei.
func DestroyRuntime() error {
	return ort.DestroyEnvironment()
}

// ============================================================================
// Session
// ============================================================================

// Session ist ein geladenes Upscaling-Modell. Infer-Aufrufe werden
// serialisiert; ein Tile belegt bereits den Grossteil des Speichers.
type Session struct {
	mu    sync.Mutex
	inner *ort.DynamicAdvancedSession
	info  vision.ModelInfo
	fp16  bool
}

// Open ist die vision.ModelFactory fuer .onnx Dateien.
func Open(path string, spec vision.ModelSpec, opts vision.LoadOptions) (vision.Model, error) {
	if err := InitRuntime(); err != nil {
		return nil, fmt.Errorf("runtime init: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("modell lesen: %w", err)
	}

	in, ok := findInfo(inputs, opts.InputName)
	if !ok {
		return nil, fmt.Errorf("onnx: input %q not found in %s", opts.InputName, filepath.Base(path))
	}
	out, ok := findInfo(outputs, opts.OutputName)
	if !ok {
		return nil, fmt.Errorf("onnx: output %q not found in %s", opts.OutputName, filepath.Base(path))
	}

	fp16 := in.DataType == ort.TensorElementDataTypeFloat16
	if !fp16 && in.DataType != ort.TensorElementDataTypeFloat {
		return nil, fmt.Errorf("onnx: unsupported input type %v", in.DataType)
	}

	scale := spec.Scale
	if scale == 0 {
		scale = scaleFromShapes(in.Dimensions, out.Dimensions)
	}

	inner, provider, err := newSession(path, opts)
	if err != nil {
		return nil, err
	}

	s := &Session{
		inner: inner,
		fp16:  fp16,
		info: vision.ModelInfo{
			Name:     spec.Name,
			Path:     path,
			Scale:    scale,
			Provider: provider,
			Float16:  fp16,
		},
	}

	slog.Debug("onnx session", "model", spec.Name, "scale", scale, "provider", provider, "fp16", fp16, "input", in.Dimensions.String(), "output", out.Dimensions.String())
	return s, nil
}

// newSession erstellt die Runtime-Session. Mit CUDA wird bei einem Fehler
// ein zweiter Versuch auf der CPU gemacht.
func newSession(path string, opts vision.LoadOptions) (*ort.DynamicAdvancedSession, string, error) {
	if opts.Device == vision.DeviceCUDA {
		inner, err := createSession(path, opts, true)
		if err == nil {
			return inner, vision.DeviceCUDA, nil
		}
		slog.Warn("cuda execution provider unavailable, falling back to cpu", "error", err)
	}

	inner, err := createSession(path, opts, false)
	if err != nil {
		return nil, "", err
	}
	return inner, vision.DeviceCPU, nil
}

func createSession(path string, opts vision.LoadOptions, cuda bool) (*ort.DynamicAdvancedSession, error) {
	sessOpts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer sessOpts.Destroy()

	if opts.Threads > 0 {
		if err := sessOpts.SetIntraOpNumThreads(opts.Threads); err != nil {
			return nil, fmt.Errorf("threads setzen: %w", err)
		}
	}

	if cuda {
		cudaOpts, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return nil, fmt.Errorf("cuda options: %w", err)
		}
		defer cudaOpts.Destroy()

		if err := cudaOpts.Update(map[string]string{"device_id": strconv.Itoa(opts.DeviceID)}); err != nil {
			return nil, fmt.Errorf("cuda options: %w", err)
		}
		if err := sessOpts.AppendExecutionProviderCUDA(cudaOpts); err != nil {
			return nil, fmt.Errorf("cuda provider: %w", err)
		}
	}

	inner, err := ort.NewDynamicAdvancedSession(path, []string{opts.InputName}, []string{opts.OutputName}, sessOpts)
	if err != nil {
		return nil, fmt.Errorf("session erstellen: %w", err)
	}
	return inner, nil
}

func findInfo(infos []ort.InputOutputInfo, name string) (ort.InputOutputInfo, bool) {
	for _, info := range infos {
		if strings.EqualFold(info.Name, name) {
			return info, true
		}
	}
	return ort.InputOutputInfo{}, false
}

// scaleFromShapes liest den Faktor aus statischen NCHW-Shapes
func scaleFromShapes(in, out ort.Shape) int {
	if len(in) == 4 && len(out) == 4 && in[3] > 0 && out[3] > 0 && out[3]%in[3] == 0 {
		return int(out[3] / in[3])
	}
	return DefaultScale
}

// ============================================================================
// vision.Model
// ============================================================================

func (s *Session) Scale() int { return s.info.Scale }

func (s *Session) Info() vision.ModelInfo { return s.info }

func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner != nil
}

// Infer fuehrt das Modell auf einem Tile aus: [1, 3, h, w] -> [1, 3, h*S, w*S].
func (s *Session) Infer(ctx context.Context, input []float32, width, height int) ([]float32, error) {
	if len(input) != 3*width*height {
		return nil, fmt.Errorf("onnx: input has %d values, want %d", len(input), 3*width*height)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inner == nil {
		return nil, ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scale := int64(s.info.Scale)
	inShape := ort.NewShape(1, 3, int64(height), int64(width))
	outShape := ort.NewShape(1, 3, int64(height)*scale, int64(width)*scale)

	if s.fp16 {
		return s.infer16(input, inShape, outShape)
	}
	return s.infer32(input, inShape, outShape)
}

func (s *Session) infer32(input []float32, inShape, outShape ort.Shape) ([]float32, error) {
	in, err := ort.NewTensor(inShape, input)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer in.Destroy()

	out, err := ort.NewEmptyTensor[float32](outShape)
	if err != nil {
		return nil, fmt.Errorf("output tensor: %w", err)
	}
	defer out.Destroy()

	if err := s.inner.Run([]ort.ArbitraryTensor{in}, []ort.ArbitraryTensor{out}); err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}

	result := make([]float32, len(out.GetData()))
	copy(result, out.GetData())
	return result, nil
}

func (s *Session) infer16(input []float32, inShape, outShape ort.Shape) ([]float32, error) {
	in, err := ort.NewCustomDataTensor(inShape, encodeFloat16(input), ort.TensorElementDataTypeFloat16)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer in.Destroy()

	out, err := ort.NewCustomDataTensor(outShape, make([]byte, 2*outShape.FlattenedSize()), ort.TensorElementDataTypeFloat16)
	if err != nil {
		return nil, fmt.Errorf("output tensor: %w", err)
	}
	defer out.Destroy()

	if err := s.inner.Run([]ort.ArbitraryTensor{in}, []ort.ArbitraryTensor{out}); err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}

	return decodeFloat16(out.GetData()), nil
}

// Close gibt die Session frei. Mehrfache Aufrufe sind erlaubt.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inner == nil {
		return nil
	}
	err := s.inner.Destroy()
	s.inner = nil
	return err
}
