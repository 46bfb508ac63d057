// MODUL: logutil
// ZWECK: Einheitlicher slog-Logger fuer Server, CLI und Engines
// INPUT: Ziel-Writer, Log-Level
// OUTPUT: *slog.Logger
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: log/slog (Standardbibliothek)
// HINWEISE: TRACE liegt unter DEBUG (-8), aktiviert via FORGE_DEBUG=2

package logutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
)

const LevelTrace slog.Level = -8

// NewLogger erstellt einen Text-Logger mit kurzen Quelldatei-Namen
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				switch attr.Value.Any().(slog.Level) {
				case LevelTrace:
					attr.Value = slog.StringValue("TRACE")
				}
			case slog.SourceKey:
				source := attr.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return attr
		},
	}))
}

// Trace loggt auf TRACE-Level ueber den Default-Logger
func Trace(msg string, args ...any) {
	slog.Log(context.TODO(), LevelTrace, msg, args...)
}
