package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-trip-planner/internal/planner"
	"github.com/FACorreiaa/go-trip-planner/internal/trips"
)

// Config contains the handlers needed for the router setup.
type Config struct {
	TripHandler    *trips.Handler
	PlannerHandler *planner.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Trip documents
		r.Route("/trips", func(r chi.Router) {
			r.Post("/", cfg.TripHandler.CreateTrip)
			r.Get("/{tripID}", cfg.TripHandler.GetTrip)
			r.Delete("/{tripID}", cfg.TripHandler.DeleteTrip)
		})
		r.Get("/users/{userID}/trips", cfg.TripHandler.GetUserTrips)

		// Live editing sessions
		r.Route("/planner/{tripID}", func(r chi.Router) {
			r.Get("/", cfg.PlannerHandler.GetState)
			r.Post("/chat", cfg.PlannerHandler.Chat)

			r.Post("/days/{dayIndex}/items", cfg.PlannerHandler.AddItem)
			r.Patch("/days/{dayIndex}/items/{itemID}", cfg.PlannerHandler.UpdateItem)
			r.Delete("/days/{dayIndex}/items/{itemID}", cfg.PlannerHandler.RemoveItem)
			r.Post("/days/{dayIndex}/reorder", cfg.PlannerHandler.ReorderItems)
			r.Post("/days/{dayIndex}/duplicate", cfg.PlannerHandler.DuplicateDay)
			r.Post("/items/move", cfg.PlannerHandler.MoveItem)

			r.Post("/undo", cfg.PlannerHandler.Undo)
			r.Post("/redo", cfg.PlannerHandler.Redo)

			r.Get("/changes", cfg.PlannerHandler.GetChangedItems)
			r.Delete("/changes", cfg.PlannerHandler.ClearChangedItems)

			r.Post("/bookings/flight", cfg.PlannerHandler.MergeFlightBooking)
			r.Post("/close", cfg.PlannerHandler.CloseSession)
		})
	})

	return r
}
