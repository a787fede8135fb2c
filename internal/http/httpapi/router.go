package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"portal/internal/http/handlers"
	"portal/internal/infra"
	"portal/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger, geo middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Actor,
		middleware.ClientGeo(geo),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/tasks", func(r chi.Router) {
		r.Post("/", app.TaskCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.TaskGet)
			r.Patch("/status", app.TaskStatusPatch)
			r.Post("/resubmit", app.TaskResubmit)
			r.Post("/uploads", app.UploadNotify)
			r.Get("/assets", app.TaskAssets)
			r.Post("/session", app.SessionOpen)
		})
	})

	r.Route("/v1/sessions/{id}", func(r chi.Router) {
		r.Get("/", app.SessionGet)
		r.Post("/entries", app.SessionAddEntry)
		r.Delete("/entries/{entryID}", app.SessionWithdrawEntry)
		r.Patch("/entries/{entryID}", app.SessionResolveEntry)
		r.Post("/playback", app.SessionPlayback)
		r.Post("/approve", app.SessionApprove)
		r.Post("/revisions", app.SessionRequestRevisions)
		r.Post("/abandon", app.SessionAbandon)
	})

	return r
}
