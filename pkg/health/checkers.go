package health

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck flags the process once its goroutine count passes the
// ceiling, a cheap way to surface leaks via the liveness probe.
func GoroutineCountCheck(ceiling int) Check {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > ceiling {
			return errors.Errorf("%d goroutines running, ceiling is %d", n, ceiling)
		}
		return nil
	}
}

// GCMaxPauseCheck flags the process when any recorded stop-the-world pause
// exceeded the given duration.
func GCMaxPauseCheck(limit time.Duration) Check {
	return func(context.Context) error {
		var stats debug.GCStats
		debug.ReadGCStats(&stats)
		for _, pause := range stats.Pause {
			if pause > limit {
				return errors.Errorf("GC pause of %s exceeded limit %s", pause, limit)
			}
		}
		return nil
	}
}
