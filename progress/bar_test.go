package progress

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBarRender(t *testing.T) {
	b := NewBar("upscaling", 100, 0)
	b.Set(50)

	got := b.render(60)
	if !strings.HasPrefix(got, "upscaling  50% ▕") {
		t.Errorf("render() = %q", got)
	}
	if n := utf8.RuneCountInString(got); n > 60 {
		t.Errorf("Breite = %d, erwartet hoechstens 60", n)
	}
	if strings.Count(got, "█") == 0 {
		t.Error("keine gefuellten Zellen bei 50%")
	}
}

func TestBarClampsAndStops(t *testing.T) {
	b := NewBar("", 10, 0)
	b.Set(25)

	if b.value != 10 {
		t.Errorf("value = %d, erwartet 10", b.value)
	}
	if b.stopped.IsZero() {
		t.Error("Laufzeit nach Erreichen von max nicht angehalten")
	}
	if got := b.render(40); !strings.HasPrefix(got, "100% ") {
		t.Errorf("render() = %q", got)
	}
}

func TestBarNarrowTerminal(t *testing.T) {
	b := NewBar("corrupting video.mp4", 100, 30)
	got := b.render(20)
	if strings.Contains(got, "▕") {
		t.Errorf("render() = %q, erwartet keinen Balken bei schmalem Terminal", got)
	}
	if !strings.Contains(got, "30%") {
		t.Errorf("render() = %q, erwartet Prozentwert", got)
	}
}

func TestSpinnerStop(t *testing.T) {
	s := NewSpinner("loading")
	s.Done("loaded %s", "model")

	if got := s.String(); got != "loaded model " {
		t.Errorf("String() = %q", got)
	}
}

func TestBarTruncatesWideMessage(t *testing.T) {
	b := NewBar("動画ファイル_とても長い名前.mp4", 100, 10)

	got := b.render(60)
	if !strings.Contains(got, "…") {
		t.Errorf("render() = %q, erwartet gekuerzte Nachricht", got)
	}
	if !strings.Contains(got, " 10% ") {
		t.Errorf("render() = %q, erwartet Prozentwert", got)
	}
}
