package server

import "github.com/go-chi/chi/v5"

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/tables", s.handleTables)
		r.Post("/calculate", s.handleCalculate)

		r.Post("/share", s.handleShareCreate)
		r.Get("/share/{token}", s.handleShareGet)

		if s.presets != nil {
			r.Get("/presets", s.handlePresetList)
			r.Get("/presets/{name}", s.handlePresetGet)
			r.Put("/presets/{name}", s.handlePresetPut)
			r.Delete("/presets/{name}", s.handlePresetDelete)
		}
	})
}
