package routers

import (
	"slotbook-service/internal/app/delivery/http/controllers"
	"slotbook-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachHoldRoutes(router chi.Router, m *middlewares.Middlewares, c *controllers.SlotController) {
	router.With(m.Compress).Get("/", c.ListHolds)
	router.Get("/{holdId}", c.GetHold)
}

func attachInboundRoutes(router chi.Router, m *middlewares.Middlewares, c *controllers.SlotController) {
	router.With(m.RequireInboundAPIKey).Post("/", c.Inbound)
}
