package onnx

import (
	"math"
	"testing"
)

func TestFloat16RoundTrip(t *testing.T) {
	in := []float32{0, 1, 0.5, 0.25, 1.0 / 255, 200.0 / 255, -0.75, 2}

	buf := encodeFloat16(in)
	if len(buf) != 2*len(in) {
		t.Fatalf("Laenge = %d, erwartet %d", len(buf), 2*len(in))
	}

	out := decodeFloat16(buf)
	for i := range in {
		// Halbe Genauigkeit reicht fuer 8-Bit Farbwerte
		if d := math.Abs(float64(out[i] - in[i])); d > 1.0/1024 {
			t.Errorf("Wert %d: %v -> %v (Abweichung %v)", i, in[i], out[i], d)
		}
	}
}

func TestFloat16ExactValues(t *testing.T) {
	// 1.0 = 0x3c00, little-endian
	buf := encodeFloat16([]float32{1})
	if buf[0] != 0x00 || buf[1] != 0x3c {
		t.Errorf("1.0 kodiert als %x, erwartet 003c", buf)
	}
}
