package progress

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

// Bar zeigt den Anteil value/max als Balken mit Prozentwert und Laufzeit
type Bar struct {
	mu      sync.Mutex
	message string
	max     int64
	value   int64
	started time.Time
	stopped time.Time
}

// NewBar erstellt einen Balken
func NewBar(message string, max, initial int64) *Bar {
	return &Bar{
		message: message,
		max:     max,
		value:   initial,
		started: time.Now(),
	}
}

// Set setzt den aktuellen Wert. Beim Erreichen von max bleibt die
// Laufzeit stehen.
func (b *Bar) Set(value int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.value = min(value, b.max)
	if b.value >= b.max && b.stopped.IsZero() {
		b.stopped = time.Now()
	}
}

func (b *Bar) percent() float64 {
	if b.max <= 0 {
		return 0
	}
	return float64(b.value) / float64(b.max) * 100
}

func (b *Bar) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.render(termWidth())
}

func (b *Bar) render(width int) string {
	// Dateinamen koennen breite Zeichen enthalten
	pre := runewidth.Truncate(b.message, max(8, width/3), "…")
	if pre != "" {
		pre += " "
	}
	pre += fmt.Sprintf("%3.0f%% ", b.percent())

	elapsed := time.Since(b.started)
	if !b.stopped.IsZero() {
		elapsed = b.stopped.Sub(b.started)
	}
	suf := " " + elapsed.Round(time.Second).String()

	n := width - runewidth.StringWidth(pre) - len(suf) - 2
	if n < 10 {
		return strings.TrimSpace(pre) + suf
	}

	filled := int(float64(n) * b.percent() / 100)
	return pre + "▕" + strings.Repeat("█", filled) + strings.Repeat(" ", n-filled) + "▏" + suf
}
