// MODUL: tiles
// ZWECK: Tile-Geometrie fuer das gekachelte Upscaling
// INPUT: Bildgroesse, Tile-Kante, Padding
// OUTPUT: Tile-Liste (Kern + gepolsterter Bereich), Spiegel-Koordinaten
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: image (Standardbibliothek)
// HINWEISE: Padding-Pixel ausserhalb des Bildes werden gespiegelt, nicht
//           geklemmt und nicht mit Null gefuellt

package upscale

import (
	"image"
)

// PrePadding ist der Standard-Rand um jedes Tile in Quellpixeln
const PrePadding = 10

// ============================================================================
// Tile-Groesse
// ============================================================================

// TileSizeFor waehlt die Tile-Kante anhand der groessten Bildkante.
// Monoton fallend: groessere Bilder bekommen kleinere Tiles, damit der
// Tensor pro Tile im Speicher begrenzt bleibt.
func TileSizeFor(maxDim int) int {
	switch {
	case maxDim <= 800:
		return max(1, min(200, maxDim))
	case maxDim <= 1500:
		return 200
	case maxDim <= 2500:
		return 128
	case maxDim <= 4000:
		return 100
	default:
		return 64
	}
}

// ============================================================================
// Tile
// ============================================================================

// Tile ist ein Kern-Rechteck des Quellbildes und sein gepolsterter Bereich.
// Padded darf ueber die Bildgrenzen hinausragen.
type Tile struct {
	Index  int
	Core   image.Rectangle
	Padded image.Rectangle
}

// Tiles zerlegt ein w x h Bild zeilenweise in Tiles der Kante size.
// Kerne am rechten und unteren Rand werden auf das Bild beschnitten.
func Tiles(w, h, size, pad int) []Tile {
	if w <= 0 || h <= 0 || size <= 0 {
		return nil
	}

	cols := (w + size - 1) / size
	rows := (h + size - 1) / size

	tiles := make([]Tile, 0, cols*rows)
	for yi := range rows {
		for xi := range cols {
			core := image.Rect(xi*size, yi*size, min((xi+1)*size, w), min((yi+1)*size, h))
			tiles = append(tiles, Tile{
				Index:  len(tiles),
				Core:   core,
				Padded: core.Inset(-pad),
			})
		}
	}
	return tiles
}

// ============================================================================
// Spiegelung
// ============================================================================

// Mirror bildet eine Koordinate per Spiegelung an den Raendern auf
// [0, max) ab: |c| und max-1-|m-(max-1)|. Fuer Raender breiter als das Bild
// wird zuerst mit der Periode 2*(max-1) gefaltet.
func Mirror(coord, max int) int {
	if max <= 1 {
		return 0
	}

	m := coord
	if m < 0 {
		m = -m
	}
	m %= 2 * (max - 1)

	d := m - (max - 1)
	if d < 0 {
		d = -d
	}
	return max - 1 - d
}
