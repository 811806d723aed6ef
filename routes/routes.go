package routes

import (
	"net/http"

	"github.com/Dosada05/bracket-tracker/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router chi.Router,
	bracketHandler *handlers.BracketHandler,
	matchHandler *handlers.MatchHandler,
	competitorHandler *handlers.CompetitorHandler,
	corsOrigins []string,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Get("/", bracketHandler.GetOverview)

		r.Route("/bracket", func(r chi.Router) {
			r.Get("/", bracketHandler.GetBracket)
			r.Post("/", bracketHandler.GenerateBracket)
			r.Post("/advance", bracketHandler.AdvanceBracket)
			r.Get("/current", bracketHandler.GetCurrentMatch)
		})
		r.Get("/standings", bracketHandler.GetStandings)

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Put("/score", matchHandler.SetScore)
			r.Put("/winner", matchHandler.SetWinner)
			r.Post("/start", matchHandler.StartMatch)
			r.Post("/reset", matchHandler.ResetMatch)
			r.Put("/best-of", matchHandler.SetBestOf)
		})

		r.Route("/competitors", func(r chi.Router) {
			r.Get("/", competitorHandler.ListCompetitors)
			r.Post("/", competitorHandler.AddCompetitor)
			r.Delete("/", competitorHandler.ResetRoster)
			r.Delete("/{competitorID}", competitorHandler.RemoveCompetitor)
			r.Put("/{competitorID}/seed", competitorHandler.SetSeed)
		})

		r.Post("/seeding", competitorHandler.ApplySeeding)
		r.Delete("/seeding", competitorHandler.ResetSeeding)
	})
}
