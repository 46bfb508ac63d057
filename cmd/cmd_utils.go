// cmd_utils.go - Hilfsfunktionen fuer die Commands
// Hauptfunktionen: checkServerHeartbeat, outputPaths, progressBars
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/chishi/forge/api"
	"github.com/chishi/forge/progress"
)

// checkServerHeartbeat - Prueft im --remote Modus ob der Server erreichbar ist
func checkServerHeartbeat(cmd *cobra.Command, _ []string) error {
	if remote, _ := cmd.Flags().GetBool("remote"); !remote {
		return nil
	}

	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}
	if err := client.Heartbeat(cmd.Context()); err != nil {
		if strings.Contains(err.Error(), " refused") || strings.Contains(err.Error(), "could not connect") {
			return fmt.Errorf("forge server not responding - is 'forge serve' running? (%w)", err)
		}
		return err
	}
	return nil
}

// outputPaths bildet Eingaben auf Ausgabedateien ab. Ohne out landet das
// Ergebnis neben der Eingabe mit suffix; ist out ein Verzeichnis (oder gibt
// es mehrere Eingaben), dort unter dem gleichen Namen plus suffix. ext
// liefert die Endung pro Eingabe.
func outputPaths(inputs []string, out, suffix string, ext func(in string) string) ([]string, error) {
	name := func(dir, in string) string {
		base := filepath.Base(in)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		return filepath.Join(dir, stem+suffix+ext(in))
	}

	paths := make([]string, len(inputs))

	if out == "" {
		for i, in := range inputs {
			paths[i] = name(filepath.Dir(in), in)
		}
		return paths, nil
	}

	info, err := os.Stat(out)
	isDir := err == nil && info.IsDir()

	if len(inputs) > 1 && !isDir {
		if err == nil {
			return nil, fmt.Errorf("output %s must be a directory for %d inputs", out, len(inputs))
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err := os.MkdirAll(out, 0o755); err != nil {
			return nil, err
		}
		isDir = true
	}

	if !isDir {
		paths[0] = out
		return paths, nil
	}

	seen := make(map[string]string)
	for i, in := range inputs {
		p := name(out, in)
		if prev, ok := seen[p]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, in, p)
		}
		seen[p] = in
		paths[i] = p
	}
	return paths, nil
}

// progressBars haelt einen Balken pro Eingabe. Die Balken werden erst beim
// ersten Fortschritt angelegt, damit die Reihenfolge der Ausgabe stimmt.
type progressBars struct {
	mu   sync.Mutex
	p    *progress.Progress
	max  int64
	bars map[string]*progress.Bar
}

func newProgressBars(p *progress.Progress, max int64) *progressBars {
	return &progressBars{p: p, max: max, bars: make(map[string]*progress.Bar)}
}

func (b *progressBars) set(name string, value int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bar, ok := b.bars[name]
	if !ok {
		bar = progress.NewBar(name, b.max, 0)
		b.bars[name] = bar
		b.p.Add(name, bar)
	}
	bar.Set(value)
}
