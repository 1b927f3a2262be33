package facade

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cogniscale/cortex/types"
)

// Shutdown is graceful and idempotent: it stops accepting new dispatches
// immediately, then drains in-flight ones by reacquiring every semaphore
// slot Dispatch hands out — a slot is only released when its dispatch
// returns, so acquiring all of them proves none are in flight — bounded by
// cfg.Facade.ShutdownTimeout (§4.11, §5).
func (f *Facade) Shutdown(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	timeout := f.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	drainCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	capacity := cap(f.sem)
	acquired := 0
	for acquired < capacity {
		select {
		case f.sem <- struct{}{}:
			acquired++
		case <-drainCtx.Done():
			f.logger.Warn("shutdown timed out waiting for in-flight dispatches to drain",
				zap.Int("drained", acquired), zap.Int("capacity", capacity))
			return types.Errorf(types.ErrTimeout, "facade: shutdown timed out after draining %d/%d slots", acquired, capacity)
		}
	}

	for name := range f.componentStatus {
		f.setComponentStatus(name, StatusStopped, "")
	}
	f.logger.Info("facade shut down")
	return nil
}
