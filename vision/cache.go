// MODUL: cache
// ZWECK: Haelt geladene Modelle zwischen Anfragen vor
// INPUT: Modellname oder Pfad
// OUTPUT: Geteilte Model-Instanzen
// NEBENEFFEKTE: Laedt Modelle beim ersten Zugriff, Close gibt alle frei
// ABHAENGIGKEITEN: sync (stdlib)
// HINWEISE: Ein Modell wird pro Schluessel hoechstens einmal gleichzeitig geladen

package vision

import (
	"errors"
	"log/slog"
	"sync"
)

// OpenFunc laedt ein Modell
type OpenFunc func(nameOrPath string) (Model, error)

type cacheEntry struct {
	once  sync.Once
	model Model
	err   error
}

// Cache laedt Modelle bei Bedarf und teilt sie zwischen Aufrufern.
// Fehlgeschlagene Ladeversuche werden nicht gemerkt.
type Cache struct {
	open    OpenFunc
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

// NewCache erstellt einen Cache. Ohne open wird OpenModel verwendet.
func NewCache(open OpenFunc) *Cache {
	if open == nil {
		open = func(name string) (Model, error) { return OpenModel(name) }
	}
	return &Cache{open: open, entries: make(map[string]*cacheEntry)}
}

// Get gibt das geladene Modell zurueck und laedt es beim ersten Zugriff.
func (c *Cache) Get(nameOrPath string) (Model, error) {
	c.mu.Lock()
	e, ok := c.entries[nameOrPath]
	if !ok {
		e = &cacheEntry{}
		c.entries[nameOrPath] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		m, err := c.open(nameOrPath)
		c.mu.Lock()
		e.model, e.err = m, err
		c.mu.Unlock()
		if err == nil {
			info := m.Info()
			slog.Info("model loaded", "name", info.Name, "scale", info.Scale, "provider", info.Provider, "fp16", info.Float16)
		}
	})

	if e.err != nil {
		c.mu.Lock()
		if c.entries[nameOrPath] == e {
			delete(c.entries, nameOrPath)
		}
		c.mu.Unlock()
		return nil, e.err
	}
	return e.model, nil
}

// Loaded gibt die Namen aller geladenen Modelle zurueck.
func (c *Cache) Loaded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var names []string
	for name, e := range c.entries {
		if e.model != nil {
			names = append(names, name)
		}
	}
	return names
}

// Close gibt alle geladenen Modelle frei.
func (c *Cache) Close() error {
	c.mu.Lock()
	var models []Model
	for _, e := range c.entries {
		if e.model != nil {
			models = append(models, e.model)
		}
	}
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()

	var errs []error
	for _, m := range models {
		errs = append(errs, m.Close())
	}
	return errors.Join(errs...)
}
