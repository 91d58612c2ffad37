package availability

import (
	"context"
	"slotbook-service/internal/app/config"
	"slotbook-service/internal/app/contracts"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/dto/messages"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// leaderLockKey makes a single instance sweep the fleet per tick.
const leaderLockKey = "slotbook:refresh:leader"

// Worker periodically asks the transport to refresh every open pool.
type Worker struct {
	log       *zap.Logger
	cfg       *config.InternalConfig
	locker    contracts.LockerService
	channel   *Channel
	transport contracts.Transport
	limiter   *rate.Limiter
	stop      chan struct{}
	stopOnce  sync.Once
	cron      *cron.Cron
	runCtx    context.Context
	cancel    context.CancelFunc
}

func NewWorker(log *zap.Logger, cfg *config.InternalConfig, lockerSvc contracts.LockerService, channel *Channel, transport contracts.Transport) *Worker {
	limit := rate.Inf
	burst := 1
	if cfg.Engine.RefreshRatePerSecond > 0 {
		limit = rate.Limit(cfg.Engine.RefreshRatePerSecond)
		burst = cfg.Engine.RefreshRatePerSecond
	}
	return &Worker{
		log:       log,
		cfg:       cfg,
		locker:    lockerSvc,
		channel:   channel,
		transport: transport,
		limiter:   rate.NewLimiter(limit, burst),
		stop:      make(chan struct{}),
	}
}

// Start schedules the sweep on the configured cron spec.
func (w *Worker) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)
	c := cron.New()
	spec := w.cfg.Engine.RefreshCronSpec
	_, err := c.AddFunc(spec, func() { w.runOnce(w.runCtx) })
	if err != nil {
		w.log.Warn("availability.Worker: failed to schedule with provided cron spec; falling back to @every 5m",
			zap.String("spec", spec),
			zap.Error(err),
		)
		c = cron.New()
		_, _ = c.AddFunc("@every 5m", func() { w.runOnce(w.runCtx) })
	}
	c.Start()
	w.cron = c
}

// Stop waits for an in-flight sweep to finish. It is safe to call twice.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		ctx := w.cron.Stop()
		<-ctx.Done()
	}
}

func (w *Worker) leaderTTL() time.Duration {
	if w.cfg.Engine.LeaderLockTTL > 0 {
		return w.cfg.Engine.LeaderLockTTL
	}
	return 2 * time.Minute
}

func (w *Worker) stopped() bool {
	select {
	case <-w.stop:
		return true
	default:
		return false
	}
}

// runOnce returns the number of refresh_availability messages sent. It sends
// nothing once Stop has been called.
func (w *Worker) runOnce(ctx context.Context) int {
	log := w.log.With(zap.String(constvars.LoggingMethodKey, "availability.Worker.runOnce"))
	if w.stopped() {
		log.Debug("worker stopped, skipping sweep")
		return 0
	}

	ttl := w.leaderTTL()
	acquired, token, err := w.locker.TryLock(ctx, leaderLockKey, ttl)
	if err != nil {
		log.Warn("leader lock attempt failed", zap.Error(err))
		return 0
	}
	if !acquired {
		log.Info("leader lock not acquired; another instance is sweeping")
		return 0
	}
	defer w.locker.Unlock(context.WithoutCancel(ctx), leaderLockKey, token)

	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer cancelRefresh()
	go func() {
		tick := time.NewTicker(ttl / 2)
		defer tick.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-tick.C:
				if err := w.locker.Refresh(refreshCtx, leaderLockKey, token, ttl); err != nil {
					log.Warn("failed to refresh leader lock TTL", zap.Error(err))
				}
			}
		}
	}()

	sent := 0
	for _, key := range w.channel.Keys() {
		if w.stopped() {
			log.Info("sweep interrupted by stop", zap.Int(constvars.LoggingUnitsKey, sent))
			return sent
		}
		if err := w.limiter.Wait(ctx); err != nil {
			log.Info("sweep interrupted", zap.Int(constvars.LoggingUnitsKey, sent), zap.Error(err))
			return sent
		}
		if err := w.transport.Send(ctx, messages.NewRefreshAvailability(key)); err != nil {
			log.Warn("failed to send refresh_availability",
				zap.String(constvars.LoggingPoolKey, key.String()),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	log.Debug("sweep finished", zap.Int(constvars.LoggingUnitsKey, sent))
	return sent
}
