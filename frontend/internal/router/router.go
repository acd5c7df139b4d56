package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/prolearn/prolearn/frontend/internal/setup"
	mw "github.com/prolearn/prolearn/shared/middleware"
	"github.com/prolearn/prolearn/shared/middleware/metrics"
)

// New creates the router with every route.
// IMPORTANT! uploads and submits share one rate limiter per user
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "If-None-Match"},
		ExposedHeaders:   []string{"Location", "ETag"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.SecurityHeadersWithCSP(deps.Public.SecureCookies, mw.DefaultCSP))

	h := deps.Handler

	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	// handles are unguessable and short-lived; <img> tags carry no bearer token
	r.Get("/previews/{handle}", h.ServePreview)

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.Auth.Middleware)

		r.Get("/me", h.GetMe)
		r.Get("/categories", h.GetCategories)

		r.Get("/posts", h.ListPosts)
		r.Route("/posts/{id}", func(r chi.Router) {
			r.Get("/", h.GetPost)
			r.Delete("/", h.DeletePost)
			r.Post("/like", h.LikePost)
			r.Delete("/like", h.UnlikePost)
			r.Post("/comments", h.AddComment)
			r.Delete("/comments/{commentId}", h.DeleteComment)
			r.Post("/editor", h.OpenEditEditor)
		})

		limited := mw.RateLimit(deps.UploadLimiter, mw.GetUsernameFromContext)

		r.Post("/editors", h.CreateEditor)
		r.Route("/editors/{editorId}", func(r chi.Router) {
			r.Get("/", h.GetEditor)
			r.Delete("/", h.CloseEditor)
			r.Patch("/draft", h.PatchDraft)
			r.With(limited).Post("/media", h.UploadMedia)
			r.Delete("/media/{index}", h.RemoveMedia)
			r.Post("/existing/{mediaId}/toggle", h.ToggleExisting)
			r.With(limited).Post("/submit", h.Submit)
		})
	})

	return r
}
