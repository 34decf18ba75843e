package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/example/photocrop/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	editHandler := handlers.NewEditHandler(s.config, s.sessions)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", editHandler.CreateSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", editHandler.GetSession)
			r.Delete("/", editHandler.CloseSession)
			r.Put("/frame", editHandler.SetFrame)
			r.Post("/drag", editHandler.Drag)
			r.Post("/export", editHandler.Export)

			r.Post("/photos", editHandler.UploadPhotos)
			r.Route("/photos/{photoID}", func(r chi.Router) {
				r.Delete("/", editHandler.DeletePhoto)
				r.Post("/pinch", editHandler.Pinch)
				r.Post("/pan", editHandler.Pan)
				r.Get("/thumbnail", editHandler.Thumbnail)
			})
		})
	})
}
