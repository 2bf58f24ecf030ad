// Package site serves the static portfolio page and the contact relay.
package site

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"portfolio-backend/internal/middleware"
)

// SendEmailPath is where the contact form posts.
const SendEmailPath = "/api/send-email"

// NewRouter mounts relay on every method of SendEmailPath, so non-POST
// requests reach its 405 handling, and serves staticDir for everything else.
func NewRouter(allowedOrigin, staticDir string, relay http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{allowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.Handle(SendEmailPath, relay)
	r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	return r
}
