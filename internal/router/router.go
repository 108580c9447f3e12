package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/driftlab-studio/studio-cms/internal/auth"
	"github.com/driftlab-studio/studio-cms/internal/handler"
	"github.com/driftlab-studio/studio-cms/internal/metrics"
	mw "github.com/driftlab-studio/studio-cms/internal/middleware"
)

func New(
	jwtSecret string,
	authH *handler.AuthHandler,
	formH *handler.FormHandler,
	subH *handler.SubmissionHandler,
	docH *handler.DocumentHandler,
	pubH *handler.PublicHandler,
	dashH *handler.DashboardHandler,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Hosted form pages
	r.Get("/f/{slug}", pubH.ShowForm)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", authH.Login)
		r.Get("/public/forms/{slug}", pubH.GetForm)
		r.Post("/forms/{slug}/submissions", pubH.Submit)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(jwtSecret))

			// Auth
			r.Get("/auth/me", authH.Me)
			r.Post("/auth/register", authH.Register)

			// Dashboard
			r.Get("/dashboard", dashH.Dashboard)

			// Forms
			r.Get("/forms", formH.List)
			r.Post("/forms", formH.Create)
			r.Get("/forms/{formId}", formH.Get)
			r.Put("/forms/{formId}", formH.Update)
			r.Delete("/forms/{formId}", formH.Delete)
			r.Get("/forms/{formId}/preview", formH.Preview)

			// Submissions
			r.Get("/forms/{formId}/submissions", subH.List)
			r.Get("/forms/{formId}/submissions/export", subH.ExportCSV)
			r.Get("/submissions/{submissionId}", subH.Get)
			r.Delete("/submissions/{submissionId}", subH.Delete)

			// Documents
			r.Get("/documents", docH.List)
			r.Get("/documents/{documentId}/download", docH.Download)
			r.Delete("/documents/{documentId}", docH.Delete)
		})
	})

	return r
}
