// Package server - Stream-Funktionen
// Beinhaltet: NDJSON-Streaming, Weiterleitung von Task-Ereignissen
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chishi/forge/api"
	"github.com/chishi/forge/task"
)

// streamResponse schreibt jeden Wert aus ch als eine NDJSON-Zeile. Ein
// gin.H mit "error" beendet den Stream; vor der ersten Zeile wird dabei
// noch der HTTP-Status gesetzt.
func streamResponse(c *gin.Context, ch chan any) {
	c.Header("Content-Type", "application/x-ndjson")
	c.Stream(func(w io.Writer) bool {
		val, ok := <-ch
		if !ok {
			return false
		}

		if h, ok := val.(gin.H); ok {
			if e, ok := h["error"].(string); ok {
				status, ok := h["status"].(int)
				if !ok {
					status = http.StatusInternalServerError
				}

				body := gin.H{"error": e}
				if code, ok := h["code"].(string); ok {
					body["code"] = code
				}

				if !c.Writer.Written() {
					c.Header("Content-Type", "application/json")
					c.JSON(status, body)
				} else {
					if err := json.NewEncoder(c.Writer).Encode(body); err != nil {
						slog.Error("streamResponse failed to encode json error", "error", err)
					}
				}

				return false
			}
		}

		bts, err := json.Marshal(val)
		if err != nil {
			slog.Info(fmt.Sprintf("streamResponse: json.Marshal failed with %s", err))
			return false
		}

		bts = append(bts, '\n')
		if _, err := w.Write(bts); err != nil {
			slog.Info(fmt.Sprintf("streamResponse: w.Write failed with %s", err))
			return false
		}

		return true
	})
}

// forward uebersetzt die Ereignisse eines Tasks in Stream-Werte. done baut
// die letzte Zeile aus dem Ergebnis. Wenn der Client weg ist, werden die
// restlichen Ereignisse nur noch gelesen, damit der Task abschliessen kann.
func forward[T any](ctx context.Context, t *task.Task[T], ch chan<- any, done func(T) api.ProgressResponse) {
	defer close(ch)

	id := t.ID().String()
	gone := false
	send := func(v any) {
		if gone {
			return
		}
		select {
		case ch <- v:
		case <-ctx.Done():
			gone = true
			t.Cancel()
		}
	}

	for ev := range t.Events() {
		switch ev.Kind {
		case task.KindStart:
			send(api.ProgressResponse{ID: id, Status: api.StatusStart})
		case task.KindProgress:
			send(api.ProgressResponse{ID: id, Status: api.StatusProgress, Progress: ev.Progress})
		case task.KindDone:
			resp := done(ev.Result)
			resp.ID = id
			resp.Status = api.StatusDone
			send(resp)
		case task.KindCancelled:
			slog.Debug("task cancelled", "id", id)
			send(api.ProgressResponse{ID: id, Status: api.StatusCancelled})
		case task.KindError:
			slog.Error("task failed", "id", id, "error", ev.Err)
			send(errorH(ev.Err))
		}
	}
}
