// MODUL: box
// ZWECK: Scan der laengenpraefixierten Box-Struktur (ISO-BMFF / MP4)
// INPUT: Roh-Bytes des Containers, Payload-Tag (Standard "mdat")
// OUTPUT: Top-Level Boxen und Payload-Regionen [start, end)
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: encoding/binary (Standardbibliothek)
// HINWEISE: size==1 (64-bit largesize) wird NICHT ausgewertet, sondern als
//           "bis Dateiende" behandelt; der Scan endet dort.

package corrupt

import (
	"encoding/binary"
)

// headerSize ist die Groesse eines kompakten Box-Headers (size + type)
const headerSize = 8

// PayloadTag ist der Typ der Media-Data Box
var PayloadTag = [4]byte{'m', 'd', 'a', 't'}

// ============================================================================
// Datentypen
// ============================================================================

// Region ist ein halboffener Byte-Bereich [Start, End) innerhalb des Puffers.
type Region struct {
	Start int
	End   int
}

// Len gibt die Laenge der Region in Bytes zurueck
func (r Region) Len() int {
	return r.End - r.Start
}

// Box beschreibt einen Top-Level Box-Header.
type Box struct {
	Offset int
	Size   int
	Type   string
	// ToEOF ist gesetzt wenn size 0 oder 1 war und die Box bis Dateiende reicht
	ToEOF bool
}

// Payload gibt den Inhaltsbereich der Box zurueck
func (b Box) Payload() Region {
	return Region{Start: b.Offset + headerSize, End: b.Offset + b.Size}
}

// ============================================================================
// Scan
// ============================================================================

// ScanBoxes laeuft ab Offset 0 ueber alle Top-Level Boxen.
// Der Scan bricht still ab sobald ein Header kaputt ist; bereits gefundene
// Boxen bleiben gueltig.
func ScanBoxes(buf []byte) []Box {
	var boxes []Box

	n := len(buf)
	for off := 0; off+headerSize <= n; {
		size := int(binary.BigEndian.Uint32(buf[off:]))
		typ := string(buf[off+4 : off+8])

		if size == 0 || size == 1 {
			// 0: Box reicht bis Dateiende
			// 1: largesize folgt, wird konservativ als Dateiende behandelt
			boxes = append(boxes, Box{Offset: off, Size: n - off, Type: typ, ToEOF: true})
			break
		}

		if size < headerSize || off+size > n {
			break
		}

		boxes = append(boxes, Box{Offset: off, Size: size, Type: typ})
		off += size
	}

	return boxes
}

// ScanRegions gibt die Payload-Regionen aller Boxen mit dem Tag zurueck.
// Leere Payloads werden nicht registriert.
func ScanRegions(buf []byte, tag [4]byte) []Region {
	var regions []Region
	for _, b := range ScanBoxes(buf) {
		if b.Type != string(tag[:]) {
			continue
		}
		if r := b.Payload(); r.Start < r.End {
			regions = append(regions, r)
		}
	}
	return regions
}

// totalBytes summiert die Laengen aller Regionen
func totalBytes(regions []Region) int {
	total := 0
	for _, r := range regions {
		total += r.Len()
	}
	return total
}
