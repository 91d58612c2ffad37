package routers

import (
	"slotbook-service/internal/app/config"
	"slotbook-service/internal/app/delivery/http/controllers"
	"slotbook-service/internal/app/delivery/http/middlewares"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

func SetupRoutes(
	router *chi.Mux,
	internalConfig *config.InternalConfig,
	middlewares *middlewares.Middlewares,
	slotController *controllers.SlotController,
) {

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}
	router.Use(cors.Handler(corsOptions))

	if internalConfig.App.MaxRequests > 0 {
		router.Use(httprate.LimitByIP(internalConfig.App.MaxRequests, time.Second))
	}

	router.Use(middlewares.RequestIDMiddleware)
	router.Use(middlewares.Logging(middlewares.Log))
	router.Use(middlewares.ErrorHandler)
	router.Use(middlewares.BodyLimit)

	router.Get("/healthz", slotController.Health)

	router.Route(internalConfig.App.EndpointPrefix, func(r chi.Router) {
		r.Route("/pools", func(r chi.Router) {
			attachPoolRoutes(r, middlewares, slotController)
		})

		r.Route("/holds", func(r chi.Router) {
			attachHoldRoutes(r, middlewares, slotController)
		})

		r.Route("/inbound", func(r chi.Router) {
			attachInboundRoutes(r, middlewares, slotController)
		})
	})
}
