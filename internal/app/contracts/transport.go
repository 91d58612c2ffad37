package contracts

import (
	"context"
	"slotbook-service/internal/pkg/dto/messages"
)

// Transport carries outbound engine commands to the remote reservation side.
type Transport interface {
	Send(ctx context.Context, msg messages.Outbound) error
}

// InboundHandler receives one raw inbound message.
type InboundHandler func(ctx context.Context, raw []byte) error

// InboundSource delivers inbound messages until ctx ends.
type InboundSource interface {
	Consume(ctx context.Context, handler InboundHandler) error
}
