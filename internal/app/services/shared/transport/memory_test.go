package transport

import (
	"context"
	"errors"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/pkg/dto/messages"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = models.PoolKey{Category: "salon", ServiceID: "cut", Date: "2024-03-15"}

func TestMemorySend(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	require.NoError(t, m.Send(ctx, messages.NewSubscribeAvailability(testKey)))
	require.NoError(t, m.Send(ctx, messages.NewReleaseSlot(testKey, "2024-03-15@09:00")))

	sent := m.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, messages.TypeSubscribeAvailability, sent[0].MessageType())
	assert.Len(t, m.SentOfType(messages.TypeReleaseSlot), 1)

	m.Reset()
	assert.Empty(t, m.Sent())
}

func TestMemoryOnSendFailure(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	boom := errors.New("link down")
	m.OnSend(func(context.Context, messages.Outbound) error { return boom })

	err := m.Send(ctx, messages.NewRefreshAvailability(testKey))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, m.Sent(), "failed sends are not recorded")
}

func TestMemoryConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewMemory(4)

	got := make(chan string, 2)
	done := make(chan error, 1)
	go func() {
		done <- m.Consume(ctx, func(_ context.Context, raw []byte) error {
			got <- string(raw)
			return errors.New("handler errors do not stop the loop")
		})
	}()

	require.NoError(t, m.Inject(ctx, []byte(`{"type":"a"}`)))
	require.NoError(t, m.Inject(ctx, []byte(`{"type":"b"}`)))

	assert.Equal(t, `{"type":"a"}`, <-got)
	assert.Equal(t, `{"type":"b"}`, <-got)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consume did not stop")
	}
}
