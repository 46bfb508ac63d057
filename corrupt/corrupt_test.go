package corrupt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"sync"
	"testing"
)

// seeded liefert eine deterministische Entropiequelle
func seeded(seed int64) io.Reader {
	return rand.New(rand.NewSource(seed))
}

func newTestCorruptor(seed int64) *Corruptor {
	return New(Options{Rand: seeded(seed)})
}

// flips zaehlt die gekippten Bits zwischen zwei gleich langen Puffern
func flippedBits(a, b []byte) int {
	n := 0
	for i := range a {
		x := a[i] ^ b[i]
		for x != 0 {
			n += int(x & 1)
			x >>= 1
		}
	}
	return n
}

func TestCorruptEndToEnd(t *testing.T) {
	// 8 Byte Header (size=64, "mdat") + 56 Byte Payload
	buf := box("mdat", 56)
	orig := bytes.Clone(buf)

	stats, err := newTestCorruptor(1).Corrupt(t.Context(), buf, 0.5, nil)
	if err != nil {
		t.Fatalf("Corrupt() error = %v", err)
	}

	if stats.Planned != 28 || stats.Modified != 28 {
		t.Errorf("Planned/Modified = %d/%d, erwartet 28/28", stats.Planned, stats.Modified)
	}
	if !bytes.Equal(buf[:8], orig[:8]) {
		t.Errorf("Header veraendert: %x -> %x", orig[:8], buf[:8])
	}
	if len(buf) != len(orig) {
		t.Errorf("Laenge veraendert: %d -> %d", len(orig), len(buf))
	}

	// Jeder Flip kippt genau ein Bit; Wiederholungen koennen sich aufheben,
	// daher ist die Paritaet der Bitdifferenz fest.
	if diff := flippedBits(orig, buf); diff > 28 || diff%2 != 0 {
		t.Errorf("gekippte Bits = %d, erwartet gerade Anzahl <= 28", diff)
	}
}

func TestCorruptOnlyTouchesPayload(t *testing.T) {
	buf := concat(box("ftyp", 24), box("mdat", 4096), box("moov", 512), box("mdat", 2048), box("free", 64))
	orig := bytes.Clone(buf)

	stats, err := newTestCorruptor(7).Corrupt(t.Context(), buf, 0.2, nil)
	if err != nil {
		t.Fatalf("Corrupt() error = %v", err)
	}

	inRegion := func(i int) bool {
		for _, r := range stats.Regions {
			if i >= r.Start && i < r.End {
				return true
			}
		}
		return false
	}

	changed := 0
	for i := range buf {
		if buf[i] == orig[i] {
			continue
		}
		if !inRegion(i) {
			t.Fatalf("Byte %d ausserhalb der Payload veraendert", i)
		}
		changed++
	}
	if changed == 0 {
		t.Error("keine Payload-Bytes veraendert")
	}

	// Box-Struktur muss identisch bleiben
	if len(ScanBoxes(buf)) != len(ScanBoxes(orig)) {
		t.Error("Box-Struktur nach Korruption veraendert")
	}
}

func TestCorruptNoPayloadRegion(t *testing.T) {
	buf := concat(box("ftyp", 16), box("moov", 64))
	orig := bytes.Clone(buf)

	_, err := newTestCorruptor(1).Corrupt(t.Context(), buf, 0.01, nil)
	if !errors.Is(err, ErrNoPayloadRegion) {
		t.Fatalf("error = %v, erwartet ErrNoPayloadRegion", err)
	}
	if !bytes.Equal(buf, orig) {
		t.Error("Puffer trotz fehlender Region veraendert")
	}
}

func TestCorruptInvalidPercent(t *testing.T) {
	for _, p := range []float64{0, -0.1, 1.5} {
		buf := box("mdat", 16)
		if _, err := newTestCorruptor(1).Corrupt(t.Context(), buf, p, nil); !errors.Is(err, ErrInvalidPercent) {
			t.Errorf("percent %v: error = %v, erwartet ErrInvalidPercent", p, err)
		}
	}
}

func TestCorruptPlannedMatchesAllocation(t *testing.T) {
	var parts [][]byte
	for range 100 {
		parts = append(parts, box("mdat", 150))
	}
	parts = append(parts, box("mdat", 9))
	buf := concat(parts...)

	var events []float64
	stats, err := newTestCorruptor(11).Corrupt(t.Context(), buf, 0.01, func(f float64) {
		events = append(events, f)
	})
	if err != nil {
		t.Fatalf("Corrupt() error = %v", err)
	}

	// Budget 150, die letzte Region nimmt aber nur 9 statt 50
	if stats.Planned != 109 || stats.Modified != 109 {
		t.Errorf("Planned/Modified = %d/%d, erwartet 109/109", stats.Planned, stats.Modified)
	}
	if len(events) != 1 || events[0] != 1 {
		t.Errorf("Fortschritt = %v, erwartet [1]", events)
	}
}

func TestCorruptProgress(t *testing.T) {
	buf := box("mdat", 1<<20)

	var events []float64
	stats, err := newTestCorruptor(3).Corrupt(t.Context(), buf, 0.5, func(f float64) {
		events = append(events, f)
	})
	if err != nil {
		t.Fatalf("Corrupt() error = %v", err)
	}

	// 524288 Flips -> alle 16384 ein Event, plus finales 1.0
	want := stats.Planned/(progressMask+1) + 1
	if len(events) != want {
		t.Fatalf("Anzahl Events = %d, erwartet %d", len(events), want)
	}
	for i := 1; i < len(events); i++ {
		if events[i] < events[i-1] {
			t.Errorf("Fortschritt nicht monoton: %v nach %v", events[i], events[i-1])
		}
	}
	if events[len(events)-1] != 1 {
		t.Errorf("letzter Fortschritt = %v, erwartet 1", events[len(events)-1])
	}
}

func TestCorruptCancel(t *testing.T) {
	buf := box("mdat", 8<<20)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	var once sync.Once
	stats, err := newTestCorruptor(5).Corrupt(ctx, buf, 1, func(float64) {
		once.Do(cancel)
	})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("error = %v, erwartet ErrCancelled", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("ErrCancelled muss context.Canceled umschliessen")
	}
	if stats.Modified >= stats.Planned {
		t.Errorf("Modified = %d, Lauf haette vorher abbrechen muessen (Planned %d)", stats.Modified, stats.Planned)
	}
}

func TestCorruptCancelledBeforeStart(t *testing.T) {
	buf := box("mdat", 64)
	orig := bytes.Clone(buf)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := newTestCorruptor(1).Corrupt(ctx, buf, 0.5, nil); !errors.Is(err, ErrCancelled) {
		t.Fatalf("error = %v, erwartet ErrCancelled", err)
	}
	if !bytes.Equal(buf, orig) {
		t.Error("Puffer trotz Abbruch vor Start veraendert")
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestCorruptRandomSourceError(t *testing.T) {
	sentinel := errors.New("entropie erschoepft")
	c := New(Options{Rand: failingReader{sentinel}})

	_, err := c.Corrupt(t.Context(), box("mdat", 32), 0.5, nil)
	if !errors.Is(err, sentinel) {
		t.Fatalf("error = %v, erwartet %v", err, sentinel)
	}
}

func TestCorruptReader(t *testing.T) {
	src := box("mdat", 256)

	out, stats, err := newTestCorruptor(9).CorruptReader(t.Context(), bytes.NewReader(src), 0.1, nil)
	if err != nil {
		t.Fatalf("CorruptReader() error = %v", err)
	}
	if len(out) != len(src) {
		t.Errorf("Laenge = %d, erwartet %d", len(out), len(src))
	}
	if stats.Modified != 25 {
		t.Errorf("Modified = %d, erwartet 25", stats.Modified)
	}
}

func TestCorruptReaderErrors(t *testing.T) {
	sentinel := errors.New("lesefehler")

	c := New(Options{Rand: seeded(1), MaxSize: 100})
	if _, _, err := c.CorruptReader(t.Context(), failingReader{sentinel}, 0.1, nil); !errors.Is(err, sentinel) {
		t.Errorf("error = %v, erwartet Lesefehler unveraendert", err)
	}

	if _, _, err := c.CorruptReader(t.Context(), bytes.NewReader(box("mdat", 200)), 0.1, nil); !errors.Is(err, ErrTooLarge) {
		t.Errorf("error = %v, erwartet ErrTooLarge", err)
	}
}

func TestConcurrentRunsAreIndependent(t *testing.T) {
	c := New(Options{})

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := concat(box("ftyp", 16), box("mdat", 4096))
			orig := bytes.Clone(buf)
			_, errs[i] = c.Corrupt(t.Context(), buf, 0.01, nil)
			if !bytes.Equal(buf[:32], orig[:32]) {
				errs[i] = errors.New("header veraendert")
			}
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Lauf %d: %v", i, err)
		}
	}
}

func TestClampUsesOptions(t *testing.T) {
	c := New(Options{MinPercent: 0.001, MaxPercent: 0.002})
	if got := c.Clamp(0.5); got != 0.002 {
		t.Errorf("Clamp(0.5) = %v, erwartet 0.002", got)
	}
	if got := c.Clamp(0); got != 0.001 {
		t.Errorf("Clamp(0) = %v, erwartet 0.001", got)
	}
}
