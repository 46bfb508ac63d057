// routes_corrupt.go - Korruptions-Endpunkt
// Enthaelt: CorruptHandler - liest den Container und streamt den Fortschritt

package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chishi/forge/api"
	"github.com/chishi/forge/corrupt"
	"github.com/chishi/forge/envconfig"
	"github.com/chishi/forge/format"
	"github.com/chishi/forge/task"
)

type corruptResult struct {
	data    []byte
	percent float64
	stats   corrupt.Stats
}

// CorruptHandler verarbeitet POST /api/corrupt?percent=<p>. Der Body ist
// der rohe Container; percent wird auf den konfigurierten Bereich begrenzt.
func (s *Server) CorruptHandler(c *gin.Context) {
	raw := c.Query("percent")
	if raw == "" {
		abortWithError(c, fmt.Errorf("%w: percent is required", corrupt.ErrInvalidPercent))
		return
	}

	percent, err := strconv.ParseFloat(raw, 64)
	if err != nil || !(percent > 0 && percent <= 1) {
		abortWithError(c, fmt.Errorf("%w: %q", corrupt.ErrInvalidPercent, raw))
		return
	}
	percent = s.corruptor.Clamp(percent)

	limit := int64(envconfig.MaxFileSize())
	buf, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %w", errMissingInput, err))
		return
	}
	if int64(len(buf)) > limit {
		abortWithError(c, fmt.Errorf("%w: limit %s", corrupt.ErrTooLarge, format.HumanBytes2(uint64(limit))))
		return
	}
	if len(buf) == 0 {
		abortWithError(c, fmt.Errorf("%w: empty body", errMissingInput))
		return
	}

	if len(corrupt.ScanRegions(buf, corrupt.PayloadTag)) == 0 {
		abortWithError(c, corrupt.ErrNoPayloadRegion)
		return
	}

	ctx := c.Request.Context()
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return
	}

	slog.Info("corrupt", "size", format.HumanBytes2(uint64(len(buf))), "percent", percent)

	t := task.Start(ctx, func(ctx context.Context, report func(float64)) (corruptResult, error) {
		defer s.sem.Release(1)

		stats, err := s.corruptor.Corrupt(ctx, buf, percent, report)
		if err != nil {
			return corruptResult{}, err
		}
		return corruptResult{data: buf, percent: percent, stats: stats}, nil
	})

	ch := make(chan any)
	go forward(ctx, t, ch, func(r corruptResult) api.ProgressResponse {
		return api.ProgressResponse{
			Progress: 1,
			Data:     r.data,
			Percent:  r.percent,
			Regions:  len(r.stats.Regions),
			Planned:  r.stats.Planned,
			Modified: r.stats.Modified,
		}
	})

	streamResponse(c, ch)
}
