package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"headergen/internal/http/handlers"
	"headergen/internal/infra"
	"headergen/internal/middleware"
)

func NewRouter(app *handlers.App, log infra.Logger, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(log),
	)
	if len(corsOrigins) > 0 {
		r.Use(middleware.CORS(corsOrigins))
	}

	r.Get("/health", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/images/square", app.ImagesSquare)
		r.Post("/images/wide", app.ImagesWide)
		r.Post("/images/crop", app.ImagesCrop)
		r.Get("/styles", app.Styles)
		r.Get("/history", app.HistoryRecent)
	})

	return r
}
