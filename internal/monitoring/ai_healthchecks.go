package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15 * time.Second

// HealthChecker is anything that can report whether a remote dependency is up.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// MonitorInferenceHealth checks the inference endpoint once immediately and then on every
// tick, storing the latest answer in healthy until ctx is done.
func MonitorInferenceHealth(ctx context.Context, checker HealthChecker, interval time.Duration, healthy *atomic.Bool) {
	if interval <= 0 {
		interval = HEALTHCHECK_TIMER
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		isHealthy := checker.HealthCheck(ctx)
		if healthy.Swap(isHealthy) != isHealthy || !isHealthy {
			if isHealthy {
				slog.Info("[HealthCheck] Inference endpoint is healthy")
			} else {
				slog.Warn("[HealthCheck] Inference endpoint is unhealthy")
			}
		}
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
