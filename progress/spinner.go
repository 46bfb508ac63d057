package progress

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Spinner zeigt eine Nachricht mit einem drehenden Zeichen
type Spinner struct {
	mu      sync.Mutex
	message string
	parts   []string
	value   int
	ticker  *time.Ticker
	stopped bool
}

// NewSpinner startet einen Spinner
func NewSpinner(message string) *Spinner {
	s := &Spinner{
		message: message,
		parts:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		ticker:  time.NewTicker(100 * time.Millisecond),
	}
	go s.start()
	return s
}

// SetMessage ersetzt die Nachricht
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

func (s *Spinner) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sb strings.Builder
	if s.message != "" {
		sb.WriteString(strings.TrimSpace(s.message))
		sb.WriteString(" ")
	}
	if !s.stopped {
		sb.WriteString(s.parts[s.value])
	}
	return sb.String()
}

func (s *Spinner) start() {
	for range s.ticker.C {
		s.mu.Lock()
		s.value = (s.value + 1) % len(s.parts)
		stopped := s.stopped
		s.mu.Unlock()
		if stopped {
			return
		}
	}
}

// Stop haelt den Spinner an
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.stopped {
		s.stopped = true
		s.ticker.Stop()
	}
}

// Done ersetzt den Spinner durch eine Abschlussmeldung
func (s *Spinner) Done(format string, args ...any) {
	s.SetMessage(fmt.Sprintf(format, args...))
	s.Stop()
}
