package routes

import (
	"github.com/courtside-app/courtside-server/handlers"
	"github.com/courtside-app/courtside-server/middleware"
	"github.com/courtside-app/courtside-server/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes mounts the full API surface. Browsing endpoints are public;
// game mutation requires a scorekeeper or admin token; follows require
// any authenticated user.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	gameHandler *handlers.GameHandler,
	tournamentHandler *handlers.TournamentHandler,
	followHandler *handlers.FollowHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticator([]byte(jwtSecret))
	scorekeepers := middleware.Authorize(models.RoleScorekeeper, models.RoleAdmin)
	admins := middleware.Authorize(models.RoleAdmin)

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.Get)
		r.Get("/{tournamentID}/divisions", tournamentHandler.Divisions)
		r.Get("/{tournamentID}/locations", tournamentHandler.Locations)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(admins)
			r.Post("/", tournamentHandler.Create)
			r.Post("/{tournamentID}/logo", tournamentHandler.UploadLogo)
			r.Get("/{tournamentID}/games", tournamentHandler.Games)
			r.Post("/{tournamentID}/games", tournamentHandler.CreateGame)
		})
	})

	router.Route("/divisions", func(r chi.Router) {
		r.Get("/{divisionID}/games", tournamentHandler.DivisionGames)
		r.Get("/{divisionID}/standings", tournamentHandler.DivisionStandings)
	})

	router.Route("/games", func(r chi.Router) {
		r.Get("/{gameID}", gameHandler.GetGame)
		r.Get("/{gameID}/downstream", gameHandler.GetDownstreamGames)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(scorekeepers)
			r.Patch("/{gameID}", gameHandler.UpdateGame)
			r.Post("/{gameID}/validate", gameHandler.ValidateUpdate)
			r.Post("/{gameID}/advancement/validate", gameHandler.ValidateAdvancement)
			r.Put("/{gameID}/advancement", gameHandler.SaveAdvancement)
			r.Post("/{gameID}/teams/{slot}/image", gameHandler.UploadTeamImage)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{gameID}/follow", followHandler.FollowGame)
			r.Delete("/{gameID}/follow", followHandler.UnfollowGame)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/me", authHandler.Me)
		r.Get("/me/followed-games", followHandler.ListFollowedGames)
	})

	router.Get("/ws/games/{gameID}", webSocketHandler.ServeGame)
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeTournament)
}
