package vision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeModel ist ein Modell ohne Runtime
type fakeModel struct {
	info   ModelInfo
	closed atomic.Bool
}

func (m *fakeModel) Scale() int   { return m.info.Scale }
func (m *fakeModel) Loaded() bool { return !m.closed.Load() }
func (m *fakeModel) Infer(ctx context.Context, in []float32, w, h int) ([]float32, error) {
	return nil, errors.New("nicht implementiert")
}
func (m *fakeModel) Close() error    { m.closed.Store(true); return nil }
func (m *fakeModel) Info() ModelInfo { return m.info }

func fakeFactory(path string, spec ModelSpec, opts LoadOptions) (Model, error) {
	scale := spec.Scale
	if scale == 0 {
		scale = 2
	}
	return &fakeModel{info: ModelInfo{Name: spec.Name, Path: path, Scale: scale, Provider: opts.Device}}, nil
}

func testOptions() LoadOptions {
	return LoadOptions{Device: DeviceCPU, InputName: "input", OutputName: "output"}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	r.Register(ModelSpec{Name: "b", File: "b.onnx", Scale: 4})
	r.Register(ModelSpec{Name: "a", File: "a.onnx", Scale: 2})

	want := []ModelSpec{
		{Name: "a", File: "a.onnx", Scale: 2},
		{Name: "b", File: "b.onnx", Scale: 4},
	}
	if diff := cmp.Diff(want, r.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	if !r.Unregister("a") || r.Unregister("a") {
		t.Error("Unregister meldet Existenz falsch")
	}
}

func TestDefaultRegistryBuiltins(t *testing.T) {
	for _, name := range []string{"RealESRGAN_x4plus", "RealESRGAN_x4plus_anime_6B"} {
		spec, ok := DefaultRegistry.Get(name)
		if !ok {
			t.Fatalf("%s nicht registriert", name)
		}
		if spec.Scale != 4 || spec.File != name+".onnx" {
			t.Errorf("%s: %+v", name, spec)
		}
	}
}

func TestRegistryOpenByName(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "m.onnx"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	r.Register(ModelSpec{Name: "m", File: "m.onnx", Scale: 4})
	r.RegisterFactory(".ONNX", fakeFactory)

	m, err := r.Open("m", dir, testOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	info := m.Info()
	if info.Scale != 4 || info.Path != filepath.Join(dir, "m.onnx") {
		t.Errorf("Info = %+v", info)
	}
}

func TestRegistryOpenByPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom_x2.onnx")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	r.RegisterFactory(".onnx", fakeFactory)

	m, err := r.Open(path, "", testOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if info := m.Info(); info.Name != "custom_x2" || info.Scale != 2 {
		t.Errorf("Info = %+v", info)
	}
}

func TestRegistryOpenErrors(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "model.pt")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	r.Register(ModelSpec{Name: "fehlt", File: "fehlt.onnx", Scale: 4})
	r.RegisterFactory(".onnx", fakeFactory)

	tests := []struct {
		name string
		opts LoadOptions
		want error
	}{
		{"fehlt", testOptions(), ErrModelNotFound},
		{"unbekannt", testOptions(), ErrUnknownModel},
		{filepath.Join(dir, "nope.onnx"), testOptions(), ErrModelNotFound},
		{other, testOptions(), ErrNoFactory},
	}

	for _, tt := range tests {
		if _, err := r.Open(tt.name, dir, tt.opts); !errors.Is(err, tt.want) {
			t.Errorf("Open(%q) error = %v, erwartet %v", tt.name, err, tt.want)
		}
	}

	path := filepath.Join(dir, "ok.onnx")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := testOptions()
	bad.Device = "tpu"
	if _, err := r.Open(path, dir, bad); !errors.Is(err, ErrInvalidDevice) {
		t.Errorf("error = %v, erwartet ErrInvalidDevice", err)
	}
}

func TestCacheLoadsOnce(t *testing.T) {
	var opens atomic.Int32
	c := NewCache(func(name string) (Model, error) {
		opens.Add(1)
		return &fakeModel{info: ModelInfo{Name: name, Scale: 4}}, nil
	})

	var wg sync.WaitGroup
	models := make([]Model, 16)
	for i := range models {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := c.Get("x")
			if err != nil {
				t.Error(err)
				return
			}
			models[i] = m
		}()
	}
	wg.Wait()

	if n := opens.Load(); n != 1 {
		t.Errorf("open aufgerufen %d mal, erwartet 1", n)
	}
	for _, m := range models[1:] {
		if m != models[0] {
			t.Fatal("Cache liefert verschiedene Instanzen")
		}
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if models[0].Loaded() {
		t.Error("Modell nach Close noch geladen")
	}
	if len(c.Loaded()) != 0 {
		t.Error("Cache nach Close nicht leer")
	}
}

func TestCacheForgetsFailures(t *testing.T) {
	fail := true
	c := NewCache(func(name string) (Model, error) {
		if fail {
			return nil, ErrModelNotFound
		}
		return &fakeModel{info: ModelInfo{Name: name, Scale: 4}}, nil
	})

	if _, err := c.Get("x"); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("error = %v, erwartet ErrModelNotFound", err)
	}

	fail = false
	if _, err := c.Get("x"); err != nil {
		t.Errorf("zweiter Versuch: %v", err)
	}
	if got := c.Loaded(); len(got) != 1 || got[0] != "x" {
		t.Errorf("Loaded() = %v", got)
	}
}

func TestLoadOptionsValidate(t *testing.T) {
	opts := testOptions()
	opts.Apply(WithDevice(DeviceCUDA), WithThreads(4), WithThreads(-1), WithDeviceID(1), WithDeviceID(-2))

	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if opts.Threads != 4 || opts.DeviceID != 1 || opts.Device != DeviceCUDA {
		t.Errorf("Options = %+v", opts)
	}

	opts.Apply(WithTensorNames("", "out"))
	if err := opts.Validate(); !errors.Is(err, ErrInvalidTensor) {
		t.Errorf("error = %v, erwartet ErrInvalidTensor", err)
	}
}

func TestDefaultLoadOptionsFromEnv(t *testing.T) {
	t.Setenv("FORGE_GPU", "1")
	t.Setenv("FORGE_NUM_THREADS", "3")

	opts := DefaultLoadOptions()
	if opts.Device != DeviceCUDA || opts.Threads != 3 {
		t.Errorf("DefaultLoadOptions() = %+v", opts)
	}
}
