package session

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/mdressler/bimscope/pkg/ifc"
)

// GenerateConfig carries the budget for one geometry generation pass
type GenerateConfig struct {
	MaxThreads             int
	Deflection             float64
	AdjustCoordinateSystem bool
	OnProgress             ifc.ProgressFunc
}

// EnsureGeometry makes sure the model has tessellated geometry. If the
// geometry store is already non-empty this is a cheap no-op. Otherwise
// it drives the store's generation pass with the supplied budget,
// forwarding progress ticks clamped to be monotonically non-decreasing
// in 0..100 (stores may report ticks out of order). Cancellation is
// cooperative via ctx; a failure during generation is surfaced as a
// GenerationError.
func EnsureGeometry(ctx context.Context, model ifc.Model, cfg GenerateConfig) error {
	if !model.IsGeometryEmpty() {
		log.Debugf("geometry already present, skipping generation")
		return nil
	}

	last := -1
	progress := func(pct int) {
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		if pct < last {
			pct = last
		}
		last = pct
		if cfg.OnProgress != nil {
			cfg.OnProgress(pct)
		}
	}

	log.Debugf("generating geometry: threads=%d deflection=%v", cfg.MaxThreads, cfg.Deflection)
	err := model.GenerateGeometry(ctx, ifc.GenerateOptions{
		Threads:                cfg.MaxThreads,
		Deflection:             cfg.Deflection,
		AdjustCoordinateSystem: cfg.AdjustCoordinateSystem,
		Progress:               progress,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ifc.GenerationError{Err: err}
	}
	return nil
}
