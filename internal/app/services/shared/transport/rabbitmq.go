package transport

import (
	"context"
	"errors"
	"fmt"
	"slotbook-service/internal/app/contracts"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/dto/messages"
	"slotbook-service/internal/pkg/exceptions"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitMQ publishes outbound messages to a durable queue with publisher
// confirms and consumes inbound messages from another.
type RabbitMQ struct {
	ch            *amqp.Channel
	pub           publisher
	log           *zap.Logger
	outboundQueue string
	inboundQueue  string
	confirms      chan amqp.Confirmation
	mu            sync.Mutex
}

var (
	_ contracts.Transport     = (*RabbitMQ)(nil)
	_ contracts.InboundSource = (*RabbitMQ)(nil)
)

// confirmBuffer leaves room for confirmations of sends that stopped waiting.
const confirmBuffer = 64

// publisher is the part of *amqp.Channel that Send uses.
type publisher interface {
	GetNextPublishSeqNo() uint64
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// NewRabbitMQ declares both queues, enables confirms and sets QoS.
func NewRabbitMQ(conn *amqp.Connection, log *zap.Logger, outboundQueue, inboundQueue string, prefetch int) (*RabbitMQ, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	for _, name := range []string{outboundQueue, inboundQueue} {
		_, err = ch.QueueDeclare(
			name,  // name
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return nil, err
		}
	}

	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	return &RabbitMQ{
		ch:            ch,
		pub:           ch,
		log:           log,
		outboundQueue: outboundQueue,
		inboundQueue:  inboundQueue,
		confirms:      ch.NotifyPublish(make(chan amqp.Confirmation, confirmBuffer)),
	}, nil
}

// Send publishes msg persistently and waits for the broker ack.
func (r *RabbitMQ) Send(ctx context.Context, msg messages.Outbound) error {
	body, err := messages.Encode(msg)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	publishing := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Type:         msg.MessageType(),
	}

	tag := r.pub.GetNextPublishSeqNo()
	if err := r.pub.PublishWithContext(ctx, "", r.outboundQueue, false, false, publishing); err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, r.outboundQueue)
	}
	return r.awaitConfirm(ctx, tag)
}

// awaitConfirm waits for the confirmation of delivery tag. Confirmations for
// earlier tags belong to sends that gave up on their context and are skipped.
func (r *RabbitMQ) awaitConfirm(ctx context.Context, tag uint64) error {
	for {
		select {
		case confirmed, ok := <-r.confirms:
			if !ok {
				return exceptions.ErrRabbitMQPublishMessage(errors.New("confirm channel closed"), r.outboundQueue)
			}
			if confirmed.DeliveryTag < tag {
				r.log.Debug("transport.RabbitMQ.awaitConfirm skipping stale confirmation",
					zap.Uint64("delivery_tag", confirmed.DeliveryTag),
					zap.Uint64("expected_tag", tag),
				)
				continue
			}
			if !confirmed.Ack {
				return exceptions.ErrRabbitMQPublishMessage(fmt.Errorf("message %d not confirmed", tag), r.outboundQueue)
			}
			return nil
		case <-ctx.Done():
			return exceptions.ErrRabbitMQPublishMessage(ctx.Err(), r.outboundQueue)
		}
	}
}

// Consume acks every delivery the handler accepts. Rejected deliveries are
// dropped rather than requeued so a malformed message cannot loop forever.
func (r *RabbitMQ) Consume(ctx context.Context, handler contracts.InboundHandler) error {
	log := r.log.With(
		zap.String(constvars.LoggingMethodKey, "transport.RabbitMQ.Consume"),
		zap.String(constvars.LoggingQueueKey, r.inboundQueue),
	)

	deliveries, err := r.ch.ConsumeWithContext(ctx, r.inboundQueue, "", false, false, false, false, nil)
	if err != nil {
		return exceptions.ErrRabbitMQConsumeMessage(err, r.inboundQueue)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return exceptions.ErrRabbitMQConsumeMessage(fmt.Errorf("delivery channel closed"), r.inboundQueue)
			}
			if err := handler(ctx, d.Body); err != nil {
				log.Warn("inbound message rejected", zap.Error(err))
				if nackErr := d.Nack(false, false); nackErr != nil {
					log.Error("failed to nack delivery", zap.Error(nackErr))
				}
				continue
			}
			if err := d.Ack(false); err != nil {
				log.Error("failed to ack delivery", zap.Error(err))
			}
		}
	}
}

func (r *RabbitMQ) Close() error {
	return r.ch.Close()
}
