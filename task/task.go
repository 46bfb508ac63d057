// MODUL: task
// ZWECK: Asynchrone Ausfuehrung einer Engine mit Ereignis-Strom
// INPUT: Kontext, Arbeitsfunktion mit Fortschritts-Reporter
// OUTPUT: Task mit ID, Ereignis-Kanal, Cancel und Wait
// NEBENEFFEKTE: Startet genau eine Goroutine pro Task
// ABHAENGIGKEITEN: github.com/google/uuid (Task-IDs)
// HINWEISE: Fortschritt blockiert nie die Engine (neuester Wert gewinnt),
//           das Abschluss-Ereignis wird immer zugestellt

package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Kind ist die Art eines Ereignisses
type Kind string

const (
	KindStart     Kind = "start"
	KindProgress  Kind = "progress"
	KindDone      Kind = "done"
	KindError     Kind = "error"
	KindCancelled Kind = "cancelled"
)

// Terminal meldet ob nach diesem Ereignis keine weiteren folgen
func (k Kind) Terminal() bool {
	return k == KindDone || k == KindError || k == KindCancelled
}

// Event ist ein Ereignis eines Tasks. Result ist nur bei KindDone gesetzt,
// Err nur bei KindError.
type Event[T any] struct {
	Kind     Kind
	Progress float64
	Result   T
	Err      error
}

// Func ist die Arbeit eines Tasks. report darf beliebig oft aufgerufen
// werden und kehrt sofort zurueck.
type Func[T any] func(ctx context.Context, report func(float64)) (T, error)

// Task ist ein laufender oder abgeschlossener Engine-Lauf
type Task[T any] struct {
	id     uuid.UUID
	cancel context.CancelFunc
	events chan Event[T]

	// progress haelt den zuletzt gemeldeten, noch nicht zugestellten Wert
	mu      sync.Mutex
	pending *float64
	wake    chan struct{}

	done   chan struct{}
	result T
	err    error
}

// Start fuehrt fn in einer eigenen Goroutine aus
func Start[T any](ctx context.Context, fn Func[T]) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)

	t := &Task[T]{
		id:     newID(),
		cancel: cancel,
		events: make(chan Event[T], 1),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	finished := make(chan Event[T], 1)
	go t.run(ctx, fn, finished)
	go t.deliver(finished)
	return t
}

func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// ID ist die eindeutige Task-ID
func (t *Task[T]) ID() uuid.UUID {
	return t.id
}

// Events liefert die Ereignisse: start, progress*, dann genau ein
// Abschluss-Ereignis. Der Kanal wird danach geschlossen und muss bis
// dahin gelesen werden, sonst bleibt die Zustell-Goroutine haengen.
func (t *Task[T]) Events() <-chan Event[T] {
	return t.events
}

// Cancel fordert den Abbruch an. Mehrfache Aufrufe sind erlaubt.
func (t *Task[T]) Cancel() {
	t.cancel()
}

// Wait blockiert bis der Task beendet ist. Ein abgebrochener Task liefert
// context.Canceled.
func (t *Task[T]) Wait() (T, error) {
	<-t.done
	return t.result, t.err
}

// ============================================================================
// Interna
// ============================================================================

func (t *Task[T]) run(ctx context.Context, fn Func[T], finished chan<- Event[T]) {
	defer t.cancel()

	result, err := fn(ctx, t.report)

	var ev Event[T]
	switch {
	case err == nil:
		ev = Event[T]{Kind: KindDone, Result: result}
	case errors.Is(err, context.Canceled):
		ev = Event[T]{Kind: KindCancelled}
		err = context.Canceled
	default:
		ev = Event[T]{Kind: KindError, Err: err}
	}

	t.result, t.err = result, err
	if err != nil {
		var zero T
		t.result = zero
	}

	slog.Debug("task finished", "id", t.id, "kind", ev.Kind)
	finished <- ev
	close(t.done)
}

// report merkt sich den Wert und weckt den Zusteller, ohne zu blockieren
func (t *Task[T]) report(p float64) {
	t.mu.Lock()
	t.pending = &p
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func (t *Task[T]) takePending() (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		return 0, false
	}
	p := *t.pending
	t.pending = nil
	return p, true
}

// deliver ist der einzige Sender auf t.events
func (t *Task[T]) deliver(finished <-chan Event[T]) {
	defer close(t.events)

	t.events <- Event[T]{Kind: KindStart}

	for {
		select {
		case <-t.wake:
			if p, ok := t.takePending(); ok {
				t.events <- Event[T]{Kind: KindProgress, Progress: p}
			}
		case ev := <-finished:
			if ev.Kind == KindDone {
				if p, ok := t.takePending(); ok {
					t.events <- Event[T]{Kind: KindProgress, Progress: p}
				}
			}
			t.events <- ev
			return
		}
	}
}
