package transport

import (
	"context"
	"slotbook-service/internal/app/contracts"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/dto/messages"
	"slotbook-service/internal/pkg/exceptions"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPubSub publishes outbound messages on one redis channel and listens
// for inbound messages on another. Delivery is at most once.
type RedisPubSub struct {
	client          *redis.Client
	log             *zap.Logger
	outboundChannel string
	inboundChannel  string
}

var (
	_ contracts.Transport     = (*RedisPubSub)(nil)
	_ contracts.InboundSource = (*RedisPubSub)(nil)
)

func NewRedisPubSub(client *redis.Client, log *zap.Logger, outboundChannel, inboundChannel string) *RedisPubSub {
	return &RedisPubSub{
		client:          client,
		log:             log,
		outboundChannel: outboundChannel,
		inboundChannel:  inboundChannel,
	}
}

func (r *RedisPubSub) Send(ctx context.Context, msg messages.Outbound) error {
	body, err := messages.Encode(msg)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}
	if err := r.client.Publish(ctx, r.outboundChannel, body).Err(); err != nil {
		return exceptions.ErrRedisPublish(err, r.outboundChannel)
	}
	return nil
}

// Consume subscribes to the inbound channel and blocks until ctx ends.
func (r *RedisPubSub) Consume(ctx context.Context, handler contracts.InboundHandler) error {
	log := r.log.With(
		zap.String(constvars.LoggingMethodKey, "transport.RedisPubSub.Consume"),
		zap.String(constvars.LoggingChannelKey, r.inboundChannel),
	)

	sub := r.client.Subscribe(ctx, r.inboundChannel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return exceptions.ErrRedisSubscribe(err, r.inboundChannel)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			if err := handler(ctx, []byte(m.Payload)); err != nil {
				log.Warn("inbound message rejected", zap.Error(err))
			}
		}
	}
}
