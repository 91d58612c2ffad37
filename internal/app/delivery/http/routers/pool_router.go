package routers

import (
	"slotbook-service/internal/app/delivery/http/controllers"
	"slotbook-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachPoolRoutes(router chi.Router, m *middlewares.Middlewares, c *controllers.SlotController) {
	router.With(m.Compress).Get("/", c.ListPools)
	router.Post("/", c.OpenPool)

	router.Route("/{category}/{serviceId}/{date}", func(r chi.Router) {
		r.Delete("/", c.ClosePool)
		r.With(m.Compress).Get("/slots", c.ListSlots)
		r.Get("/events", c.Stream)
		r.With(m.Compress).Get("/suggestions", c.Suggest)
		r.Post("/reservations", c.Reserve)
		r.Delete("/reservations/{slotId}", c.Release)
		r.Post("/blocks", c.ReserveBlock)
	})
}
