// MODUL: image_test
// ZWECK: Tests fuer Bild-Lade- und Ausgabefunktionen
// INPUT: Synthetische Bilder und PNG-Bytes
// OUTPUT: Testresultate
// NEBENEFFEKTE: Temporaere Dateien
// ABHAENGIGKEITEN: testing, image, image/png, bytes
// HINWEISE: Testet Dekodierung, NRGBA-Konvertierung und Formatwahl beim Schreiben

package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
)

// createPNGBytes erzeugt PNG-Bytes aus einem Testbild
func createPNGBytes(w, h int, c color.Color) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func TestLoadImageFromBytes(t *testing.T) {
	pngData := createPNGBytes(100, 50, color.NRGBA{255, 0, 0, 255})

	img, err := LoadImageFromBytes(pngData)
	if err != nil {
		t.Fatalf("LoadImageFromBytes() error = %v", err)
	}

	if img.Width != 100 || img.Height != 50 {
		t.Errorf("Groesse = %dx%d, erwartet 100x50", img.Width, img.Height)
	}

	if img.Format != FormatPNG {
		t.Errorf("Format = %v, erwartet %v", img.Format, FormatPNG)
	}
}

func TestLoadImageKeepsStraightAlpha(t *testing.T) {
	want := color.NRGBA{200, 100, 50, 128}
	img, err := LoadImageFromBytes(createPNGBytes(4, 4, want))
	if err != nil {
		t.Fatalf("LoadImageFromBytes() error = %v", err)
	}

	if got := img.Image.NRGBAAt(2, 2); got != want {
		t.Errorf("Pixel = %v, erwartet %v", got, want)
	}
}

func TestLoadImageFromBytesInvalid(t *testing.T) {
	invalidData := []byte{0x00, 0x00, 0x00, 0x00}

	_, err := LoadImageFromBytes(invalidData)
	if err == nil {
		t.Error("Erwartet Fehler bei ungueltigem Format")
	}
}

func TestLoadImageFromBytesTruncated(t *testing.T) {
	pngData := createPNGBytes(20, 20, color.White)

	if _, err := LoadImageFromBytes(pngData[:len(pngData)/2]); err == nil {
		t.Error("Erwartet Fehler bei abgeschnittenem PNG")
	}
}

func TestDecodeImage(t *testing.T) {
	pngData := createPNGBytes(80, 60, color.White)
	reader := bytes.NewReader(pngData)

	img, err := DecodeImage(reader)
	if err != nil {
		t.Fatalf("DecodeImage() error = %v", err)
	}

	if img.Width != 80 || img.Height != 60 {
		t.Errorf("Groesse = %dx%d, erwartet 80x60", img.Width, img.Height)
	}
}

func TestToNRGBAMovesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10)).SubImage(image.Rect(2, 3, 7, 9))

	got := ToNRGBA(src)
	if b := got.Bounds(); b.Min != (image.Point{}) || b.Dx() != 5 || b.Dy() != 6 {
		t.Errorf("Bounds = %v, erwartet (0,0)-(5,6)", b)
	}
}

func TestEncodeFormats(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}

	tests := []struct {
		in   ImageFormat
		want ImageFormat
	}{
		{FormatPNG, FormatPNG},
		{FormatJPEG, FormatJPEG},
		{FormatBMP, FormatBMP},
		{FormatWebP, FormatPNG},
		{FormatGIF, FormatPNG},
	}

	for _, tt := range tests {
		data, out, err := EncodeToBytes(src, tt.in)
		if err != nil {
			t.Fatalf("EncodeToBytes(%v) error = %v", tt.in, err)
		}
		if out != tt.want {
			t.Errorf("EncodeToBytes(%v) Format = %v, erwartet %v", tt.in, out, tt.want)
		}
		if got := DetectFormat(data); got != tt.want {
			t.Errorf("EncodeToBytes(%v) erzeugt %v, erwartet %v", tt.in, got, tt.want)
		}

		back, err := LoadImageFromBytes(data)
		if err != nil {
			t.Fatalf("Rueckweg %v: %v", tt.want, err)
		}
		if back.Width != 8 || back.Height != 8 {
			t.Errorf("Rueckweg %v: Groesse %dx%d", tt.want, back.Width, back.Height)
		}
	}
}

func TestSaveImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	path := filepath.Join(t.TempDir(), "out.png")

	if err := SaveImage(path, src); err != nil {
		t.Fatalf("SaveImage() error = %v", err)
	}

	img, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage() error = %v", err)
	}
	if img.Format != FormatPNG || img.Width != 3 || img.Height != 2 {
		t.Errorf("gelesen %v %dx%d, erwartet png 3x2", img.Format, img.Width, img.Height)
	}
}

func TestComposite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.NRGBA{255, 0, 0, 128}) // Halbtransparentes Rot
		}
	}

	composited := Composite(img, color.White)

	// Nach Composite sollte Alpha 255 sein
	r, g, _, a := composited.At(5, 5).RGBA()
	if a>>8 != 255 {
		t.Errorf("Alpha = %d, erwartet 255", a>>8)
	}

	// Rot + Weiss: Rot voll, Gruen etwa halb
	if r>>8 != 255 {
		t.Errorf("Rot = %d, erwartet 255", r>>8)
	}
	if g>>8 < 120 || g>>8 > 135 {
		t.Errorf("Gruen = %d, erwartet etwa 127", g>>8)
	}
}
