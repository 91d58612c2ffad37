package availability

import (
	"context"
	"errors"
	"slotbook-service/internal/app/config"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/pkg/dto/messages"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocker struct {
	mu       sync.Mutex
	held     bool
	err      error
	unlocked int
}

func (f *fakeLocker) TryLock(_ context.Context, _ string, _ time.Duration) (bool, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, "", f.err
	}
	if f.held {
		return false, "", nil
	}
	f.held = true
	return true, "token", nil
}

func (f *fakeLocker) Unlock(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held = false
	f.unlocked++
	return nil
}

func (f *fakeLocker) Refresh(context.Context, string, string, time.Duration) error {
	return nil
}

func testConfig() *config.InternalConfig {
	return &config.InternalConfig{Engine: config.AppEngine{
		RefreshCronSpec:      "@every 1h",
		RefreshRatePerSecond: 100,
		LeaderLockTTL:        time.Minute,
	}}
}

func TestWorkerRunOnce(t *testing.T) {
	ctx := context.Background()
	other := models.PoolKey{Category: "medical", ServiceID: "gp", Date: "2024-03-15"}

	t.Run("Leader refreshes every open pool", func(t *testing.T) {
		c, mem := newTestChannel(t)
		require.NoError(t, c.Open(other, seedSlots()))
		locker := &fakeLocker{}

		w := NewWorker(c.log, testConfig(), locker, c, mem)
		assert.Equal(t, 2, w.runOnce(ctx))

		sent := mem.SentOfType(messages.TypeRefreshAvailability)
		require.Len(t, sent, 2)
		assert.Equal(t, other, sent[0].Key(), "keys are swept in stable order")
		assert.Equal(t, testKey, sent[1].Key())
		assert.Equal(t, 1, locker.unlocked)
	})

	t.Run("Follower does nothing", func(t *testing.T) {
		c, mem := newTestChannel(t)
		locker := &fakeLocker{held: true}

		w := NewWorker(c.log, testConfig(), locker, c, mem)
		assert.Equal(t, 0, w.runOnce(ctx))
		assert.Empty(t, mem.Sent())
	})

	t.Run("Stopped worker sends nothing", func(t *testing.T) {
		c, mem := newTestChannel(t)
		locker := &fakeLocker{}

		w := NewWorker(c.log, testConfig(), locker, c, mem)
		w.Stop()
		assert.Equal(t, 0, w.runOnce(ctx))
		assert.Empty(t, mem.Sent())
		assert.Equal(t, 0, locker.unlocked, "the leader lock is not even tried")
	})

	t.Run("Stop ends a sweep between pools", func(t *testing.T) {
		c, mem := newTestChannel(t)
		require.NoError(t, c.Open(other, seedSlots()))
		w := NewWorker(c.log, testConfig(), &fakeLocker{}, c, mem)
		mem.OnSend(func(context.Context, messages.Outbound) error {
			w.Stop()
			return nil
		})

		assert.Equal(t, 1, w.runOnce(ctx))
		assert.Len(t, mem.SentOfType(messages.TypeRefreshAvailability), 1)
	})

	t.Run("Lock errors skip the sweep", func(t *testing.T) {
		c, mem := newTestChannel(t)
		locker := &fakeLocker{err: errors.New("redis down")}

		w := NewWorker(c.log, testConfig(), locker, c, mem)
		assert.Equal(t, 0, w.runOnce(ctx))
		assert.Empty(t, mem.Sent())
	})
}

func TestWorkerStartStop(t *testing.T) {
	c, mem := newTestChannel(t)
	cfg := testConfig()
	cfg.Engine.RefreshCronSpec = "not a spec"

	w := NewWorker(c.log, cfg, &fakeLocker{}, c, mem)
	w.Start(context.Background())
	w.Stop()
	w.Stop()
}

func TestRefreshEvery(t *testing.T) {
	c, mem := newTestChannel(t)

	stop := c.RefreshEvery(context.Background(), testKey, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(mem.SentOfType(messages.TypeRefreshAvailability)) >= 2
	}, time.Second, 5*time.Millisecond)
	stop()

	n := len(mem.SentOfType(messages.TypeRefreshAvailability))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, len(mem.SentOfType(messages.TypeRefreshAvailability)), "no sends after stop")
}
