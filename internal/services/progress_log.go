package services

import (
	"route-pool-service/internal/ports"

	"go.uber.org/zap"
)

// ProgressLogger logs generation progress every Every completed items, on
// every failure and on the final item.
type ProgressLogger struct {
	Log   *zap.Logger
	Every int
}

func (p ProgressLogger) OnTaskDone(ev ports.ProgressEvent) {
	if ev.Err != nil {
		p.Log.Warn("candidate route task failed",
			zap.String("target", ev.Target),
			zap.Int("capacity", ev.Capacity),
			zap.Int("variant", ev.Variant),
			zap.Error(ev.Err),
		)
	}

	every := max(p.Every, 1)
	if ev.Done%every != 0 && ev.Done != ev.Total {
		return
	}
	p.Log.Info("candidate pool progress", zap.Int("done", ev.Done), zap.Int("total", ev.Total))
}
