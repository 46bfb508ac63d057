// MODUL: progress
// ZWECK: Terminal-Fortschrittsanzeige fuer lange Engine-Laeufe
// INPUT: Zustaende (Bar, Spinner) unter einem Schluessel
// OUTPUT: Periodisch neu gezeichnete Zeilen auf einem io.Writer
// NEBENEFFEKTE: Startet eine Render-Goroutine, schreibt ANSI-Sequenzen
// ABHAENGIGKEITEN: golang.org/x/term (Terminalbreite)
// HINWEISE: Stop zeichnet ein letztes Mal und laesst die Zeilen stehen,
//           StopAndClear entfernt sie

package progress

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// State ist eine darstellbare Zeile
type State interface {
	String() string
}

// Progress zeichnet eine Liste von Zustaenden
type Progress struct {
	mu sync.Mutex
	w  io.Writer

	pos    int
	keys   []string
	states map[string]State

	ticker *time.Ticker
}

// NewProgress startet die Anzeige auf w
func NewProgress(w io.Writer) *Progress {
	p := &Progress{
		w:      w,
		states: make(map[string]State),
		ticker: time.NewTicker(100 * time.Millisecond),
	}
	go p.start(p.ticker)
	return p
}

// Add fuegt einen Zustand hinzu oder ersetzt den unter key
func (p *Progress) Add(key string, state State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.states[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.states[key] = state
}

// Stop beendet die Anzeige und laesst die letzte Ausgabe stehen
func (p *Progress) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ticker == nil {
		return false
	}
	p.ticker.Stop()
	p.ticker = nil
	p.render()
	fmt.Fprintln(p.w)
	return true
}

// StopAndClear beendet die Anzeige und loescht die Zeilen
func (p *Progress) StopAndClear() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ticker == nil {
		return false
	}
	p.ticker.Stop()
	p.ticker = nil
	p.clear()
	return true
}

func (p *Progress) start(ticker *time.Ticker) {
	for range ticker.C {
		p.mu.Lock()
		if p.ticker == nil {
			p.mu.Unlock()
			return
		}
		p.render()
		p.mu.Unlock()
	}
}

func (p *Progress) clear() {
	// Cursor an den Anfang der ersten Zeile
	if p.pos > 0 {
		fmt.Fprintf(p.w, "\033[%dA", p.pos-1)
	}
	fmt.Fprint(p.w, "\r\033[J")
	p.pos = 0
}

func (p *Progress) render() {
	bw := bufio.NewWriter(p.w)
	defer bw.Flush()

	if p.pos > 0 {
		fmt.Fprintf(bw, "\033[%dA", p.pos-1)
	}
	fmt.Fprint(bw, "\r")

	for i, key := range p.keys {
		if i > 0 {
			fmt.Fprint(bw, "\n")
		}
		fmt.Fprintf(bw, "\033[K%s", p.states[key].String())
	}
	p.pos = len(p.keys)
}

// termWidth gibt die Breite des Terminals zurueck, 80 wenn unbekannt
func termWidth() int {
	w, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
