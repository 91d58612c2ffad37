package transport

import (
	"context"
	"slotbook-service/internal/app/contracts"
	"slotbook-service/internal/pkg/dto/messages"
	"sync"
)

// SendHook observes every outbound message before it is recorded. A non-nil
// error fails the send and the message is not recorded.
type SendHook func(ctx context.Context, msg messages.Outbound) error

// Memory is an in-process transport. It records outbound messages in send
// order and feeds injected raw messages to a consumer. It backs tests and the
// single-node deployment.
type Memory struct {
	mu      sync.Mutex
	sent    []messages.Outbound
	onSend  SendHook
	inbound chan []byte
}

var (
	_ contracts.Transport     = (*Memory)(nil)
	_ contracts.InboundSource = (*Memory)(nil)
)

func NewMemory(bufferSize int) *Memory {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Memory{inbound: make(chan []byte, bufferSize)}
}

// OnSend installs a hook, replacing any previous one.
func (m *Memory) OnSend(hook SendHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSend = hook
}

func (m *Memory) Send(ctx context.Context, msg messages.Outbound) error {
	m.mu.Lock()
	hook := m.onSend
	m.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, msg); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return nil
}

// Sent returns a copy of everything sent so far.
func (m *Memory) Sent() []messages.Outbound {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]messages.Outbound(nil), m.sent...)
}

// SentOfType filters Sent by message type.
func (m *Memory) SentOfType(messageType string) []messages.Outbound {
	var out []messages.Outbound
	for _, msg := range m.Sent() {
		if msg.MessageType() == messageType {
			out = append(out, msg)
		}
	}
	return out
}

func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}

// Inject queues a raw inbound message for Consume.
func (m *Memory) Inject(ctx context.Context, raw []byte) error {
	select {
	case m.inbound <- raw:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume hands injected messages to handler until ctx ends. Handler errors
// do not stop consumption.
func (m *Memory) Consume(ctx context.Context, handler contracts.InboundHandler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case raw := <-m.inbound:
			_ = handler(ctx, raw)
		}
	}
}
