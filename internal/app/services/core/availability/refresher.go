package availability

import (
	"context"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/dto/messages"
	"time"

	"go.uber.org/zap"
)

// RefreshEvery asks the transport for a fresh availability picture of key on
// every tick until ctx ends or the returned stop function is called.
func (c *Channel) RefreshEvery(ctx context.Context, key models.PoolKey, interval time.Duration) (stop func()) {
	runCtx, cancel := context.WithCancel(ctx)
	if interval <= 0 || c.transport == nil {
		return cancel
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-tick.C:
				if _, err := c.topic(key); err != nil {
					// pool was closed underneath us
					return
				}
				if err := c.transport.Send(runCtx, messages.NewRefreshAvailability(key)); err != nil {
					c.log.Warn("availability.Channel.RefreshEvery failed to send refresh_availability",
						zap.String(constvars.LoggingPoolKey, key.String()),
						zap.Error(err),
					)
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
