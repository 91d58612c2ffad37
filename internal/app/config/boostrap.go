package config

import (
	"context"
	"log"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Bootstrap struct {
	Router         *chi.Mux
	Redis          *redis.Client
	Logger         *zap.Logger
	RabbitMQ       *amqp091.Connection
	Postgres       *pgxpool.Pool
	InternalConfig *InternalConfig
	DriverConfig   *DriverConfig
	// WorkerStop stops the fleet refresh worker
	WorkerStop func()
	// EngineStop closes every pool, hold and inbound consumer
	EngineStop func()
}

func (b *Bootstrap) Shutdown(ctx context.Context) error {
	if b.WorkerStop != nil {
		b.WorkerStop()
		log.Println("Successfully stopped refresh worker")
	}

	if b.EngineStop != nil {
		b.EngineStop()
		log.Println("Successfully stopped availability engine")
	}

	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			return err
		}
		log.Println("Successfully closing Redis")
	}

	if b.RabbitMQ != nil {
		if err := b.RabbitMQ.Close(); err != nil {
			return err
		}
		log.Println("Successfully closing RabbitMQ")
	}

	if b.Postgres != nil {
		b.Postgres.Close()
		log.Println("Successfully closing Postgres")
	}

	if err := b.Logger.Sync(); err != nil {
		return err
	}
	log.Println("Successfully closing Logger")

	return nil
}
