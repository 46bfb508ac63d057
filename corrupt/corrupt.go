// MODUL: corrupt
// ZWECK: Strukturbewusste Bit-Korruption innerhalb von Payload-Boxen
// INPUT: Container-Bytes, Anteil (0, 1], Fortschritts-Callback
// OUTPUT: In-Place mutierter Puffer, Statistik
// NEBENEFFEKTE: Mutiert den uebergebenen Puffer (Laenge und Box-Header bleiben)
// ABHAENGIGKEITEN: crypto/rand als Standard-Entropiequelle
// HINWEISE: Ziehen mit Zuruecklegen, Fortschritt alle 0x4000 Flips,
//           Abbruch kooperativ ueber context.Context

package corrupt

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/chishi/forge/logutil"
)

// ============================================================================
// Fehler-Definitionen
// ============================================================================

var (
	// ErrNoPayloadRegion: keine Box mit dem Payload-Tag gefunden
	ErrNoPayloadRegion = errors.New("corrupt: no payload region found")

	// ErrInvalidPercent: Anteil ausserhalb von (0, 1]
	ErrInvalidPercent = errors.New("corrupt: percent must be in (0, 1]")

	// ErrTooLarge: Eingabe groesser als Options.MaxSize
	ErrTooLarge = errors.New("corrupt: input exceeds size limit")

	// ErrCancelled markiert einen abgebrochenen Lauf. Kein Fehler im
	// eigentlichen Sinn; der Puffer ist danach nicht mehr verwendbar.
	ErrCancelled = fmt.Errorf("corrupt: %w", context.Canceled)
)

// progressMask: Fortschritt nach jeweils 16384 Modifikationen
const progressMask = 0x3fff

// ============================================================================
// Konfiguration
// ============================================================================

// Options konfiguriert einen Corruptor
type Options struct {
	// Tag ist der Box-Typ dessen Payload veraendert wird (Standard "mdat")
	Tag [4]byte

	// MinPercent/MaxPercent begrenzen den Anteil auf Aufruferseite
	MinPercent float64
	MaxPercent float64

	// MaxSize begrenzt CorruptReader (0 = unbegrenzt)
	MaxSize int64

	// Rand ist die Entropiequelle (Standard crypto/rand.Reader)
	Rand io.Reader
}

// DefaultOptions gibt die Standard-Konfiguration zurueck
func DefaultOptions() Options {
	return Options{
		Tag:        PayloadTag,
		MinPercent: 0.00001,
		MaxPercent: 0.01,
		MaxSize:    768 << 20,
		Rand:       rand.Reader,
	}
}

// ProgressFunc erhaelt den Fortschritt als Bruch in [0, 1]
type ProgressFunc func(fraction float64)

// Stats beschreibt einen abgeschlossenen Lauf
type Stats struct {
	Regions     []Region
	RegionBytes int
	// Planned ist die Summe der Zuteilungen, Modified die Anzahl
	// tatsaechlicher Flips. Ist die letzte Region kuerzer als ihr Rest,
	// liegt Planned unter dem globalen Budget. Wegen Ziehen mit
	// Zuruecklegen kann die Anzahl verschiedener Bytes kleiner sein.
	Planned  int
	Modified int
}

// Corruptor fuehrt Korruptionslaeufe aus. Ein Corruptor haelt keinen
// veraenderlichen Zustand; parallele Laeufe auf verschiedenen Puffern sind
// unabhaengig.
type Corruptor struct {
	opts Options
}

// New erstellt einen Corruptor, fehlende Optionen werden mit Defaults belegt
func New(opts Options) *Corruptor {
	def := DefaultOptions()
	if opts.Tag == ([4]byte{}) {
		opts.Tag = def.Tag
	}
	if opts.MinPercent <= 0 {
		opts.MinPercent = def.MinPercent
	}
	if opts.MaxPercent <= 0 {
		opts.MaxPercent = def.MaxPercent
	}
	if opts.Rand == nil {
		opts.Rand = def.Rand
	}
	return &Corruptor{opts: opts}
}

// Clamp begrenzt einen Anteil auf den konfigurierten Bereich
func (c *Corruptor) Clamp(percent float64) float64 {
	return ClampPercent(percent, c.opts.MinPercent, c.opts.MaxPercent)
}

// ============================================================================
// Korruption
// ============================================================================

// CorruptReader liest die Quelle vollstaendig und korrumpiert sie.
// Lesefehler werden unveraendert zurueckgegeben.
func (c *Corruptor) CorruptReader(ctx context.Context, r io.Reader, percent float64, fn ProgressFunc) ([]byte, Stats, error) {
	if c.opts.MaxSize > 0 {
		r = io.LimitReader(r, c.opts.MaxSize+1)
	}

	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, Stats{}, err
	}

	if c.opts.MaxSize > 0 && int64(len(buf)) > c.opts.MaxSize {
		return nil, Stats{}, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, c.opts.MaxSize)
	}

	stats, err := c.Corrupt(ctx, buf, percent, fn)
	if err != nil {
		return nil, stats, err
	}
	return buf, stats, nil
}

// Corrupt kippt zufaellige Einzelbits ausschliesslich innerhalb der
// Payload-Regionen von buf. Bei ErrCancelled ist buf teilweise veraendert
// und darf nicht weiterverwendet werden.
func (c *Corruptor) Corrupt(ctx context.Context, buf []byte, percent float64, fn ProgressFunc) (Stats, error) {
	if !(percent > 0 && percent <= 1) {
		return Stats{}, fmt.Errorf("%w: %v", ErrInvalidPercent, percent)
	}

	regions := ScanRegions(buf, c.opts.Tag)
	if len(regions) == 0 {
		return Stats{}, ErrNoPayloadRegion
	}

	budget, perRegion := Allocate(regions, percent)
	planned := 0
	for _, k := range perRegion {
		planned += k
	}
	stats := Stats{
		Regions:     regions,
		RegionBytes: totalBytes(regions),
		Planned:     planned,
	}

	slog.Debug("corrupt start", "regions", len(regions), "bytes", stats.RegionBytes, "percent", percent, "budget", budget, "planned", planned)

	var cancelled atomic.Bool
	stop := context.AfterFunc(ctx, func() { cancelled.Store(true) })
	defer stop()

	if fn == nil {
		fn = func(float64) {}
	}

	rnd := newRandPool(c.opts.Rand)
	for i, r := range regions {
		if cancelled.Load() || ctx.Err() != nil {
			return stats, ErrCancelled
		}

		k := perRegion[i]
		logutil.Trace("corrupt region", "index", i, "start", r.Start, "end", r.End, "flips", k)

		n := r.Len()
		for range k {
			if cancelled.Load() {
				return stats, ErrCancelled
			}

			off, err := rnd.intn(n)
			if err != nil {
				return stats, err
			}
			bit, err := rnd.bit()
			if err != nil {
				return stats, err
			}

			buf[r.Start+off] ^= 1 << bit
			stats.Modified++

			if stats.Modified&progressMask == 0 {
				fn(float64(stats.Modified) / float64(planned))
				runtime.Gosched()
			}
		}
	}

	fn(1)
	slog.Debug("corrupt done", "modified", stats.Modified)
	return stats, nil
}
