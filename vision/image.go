// MODUL: image
// ZWECK: Bilder laden, dekodieren und nach dem Upscaling schreiben
// INPUT: Dateipfad, Bytes oder io.Reader; Ergebnisbild und Zielformat
// OUTPUT: ImageInput mit NRGBA-Bild, kodierte Bild-Bytes
// NEBENEFFEKTE: Dateisystem-Zugriff bei LoadImage/SaveImage
// ABHAENGIGKEITEN: golang.org/x/image/draw, golang.org/x/image/webp,
//                  golang.org/x/image/bmp (extern), image/jpeg, image/png, image/gif
// HINWEISE: Alle Bilder werden als NRGBA (gerade Alpha) gefuehrt,
//           JPEG-Ausgabe wird auf weissen Hintergrund gelegt

package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	// Standard-Decoder registrieren
	_ "image/gif"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// JPEGQuality ist die Qualitaet fuer JPEG-Ausgaben
const JPEGQuality = 95

// ImageInput enthaelt ein dekodiertes Bild mit Metadaten
type ImageInput struct {
	Image  *image.NRGBA
	Width  int
	Height int
	Format ImageFormat
}

// LoadImage laedt ein Bild von einem Dateipfad
func LoadImage(path string) (*ImageInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("datei lesen fehlgeschlagen: %w", err)
	}
	return LoadImageFromBytes(data)
}

// LoadImageFromBytes dekodiert ein Bild aus Byte-Daten
func LoadImageFromBytes(data []byte) (*ImageInput, error) {
	format := DetectFormat(data)
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	return decodeWithFormat(bytes.NewReader(data), format)
}

// DecodeImage dekodiert ein Bild aus einem io.Reader
func DecodeImage(reader io.Reader) (*ImageInput, error) {
	// Erst Daten puffern fuer Format-Erkennung
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("daten lesen fehlgeschlagen: %w", err)
	}
	return LoadImageFromBytes(data)
}

// decodeWithFormat dekodiert und konvertiert zu NRGBA
func decodeWithFormat(reader io.Reader, format ImageFormat) (*ImageInput, error) {
	img, _, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("bild dekodieren fehlgeschlagen: %w", err)
	}

	nrgba := ToNRGBA(img)
	bounds := nrgba.Bounds()

	return &ImageInput{
		Image:  nrgba,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}, nil
}

// ToNRGBA konvertiert ein beliebiges image.Image zu *image.NRGBA mit
// Ursprung (0, 0)
func ToNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && bounds.Min == (image.Point{}) {
		return n
	}

	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// ============================================================================
// Ausgabe
// ============================================================================

// Encode schreibt img im Ausgabeformat von format. WebP, GIF und
// unbekannte Formate werden als PNG geschrieben.
func Encode(w io.Writer, img image.Image, format ImageFormat) (ImageFormat, error) {
	out := format.OutputFormat()

	var err error
	switch out {
	case FormatJPEG:
		err = jpeg.Encode(w, Composite(img, color.White), &jpeg.Options{Quality: JPEGQuality})
	case FormatBMP:
		err = bmp.Encode(w, img)
	default:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		err = enc.Encode(w, img)
	}
	if err != nil {
		return out, fmt.Errorf("bild kodieren fehlgeschlagen (%s): %w", out, err)
	}
	return out, nil
}

// EncodeToBytes kodiert img in einen Puffer
func EncodeToBytes(img image.Image, format ImageFormat) ([]byte, ImageFormat, error) {
	var buf bytes.Buffer
	out, err := Encode(&buf, img, format)
	if err != nil {
		return nil, out, err
	}
	return buf.Bytes(), out, nil
}

// SaveImage schreibt img nach path, das Format folgt der Dateiendung
func SaveImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := Encode(f, img, FormatFromName(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Composite legt ein Bild auf eine einfarbige Flaeche und entfernt so
// den Alpha-Kanal
func Composite(img image.Image, bg color.Color) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)

	draw.Draw(dst, bounds, &image.Uniform{bg}, image.Point{}, draw.Src)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Over)
	return dst
}
