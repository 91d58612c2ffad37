package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"slotbook-service/internal/app/config"
	"slotbook-service/internal/app/drivers/logger"
	"slotbook-service/internal/app/server"
	"syscall"
	"time"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		log.Fatalf("Error loading location: %v", err)
	}
	time.Local = location

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, driverConfig, internalConfig, zapLogger)
	if err != nil {
		log.Fatalf("Failed to bootstrap the app: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
	log.Println("Server exiting")
}
