package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"videoprompt/internal/http/handlers"
	"videoprompt/internal/middleware"
)

type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	DefaultLocale  string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get(handlers.OpenAPIPath, app.OpenAPIJSON)
	r.Get(handlers.DocsPath, app.OpenAPIDocs)

	r.Route("/v1/session", func(r chi.Router) {
		r.Get("/", app.SessionGet)
		r.Delete("/", app.SessionReset)
		r.Post("/video", app.SessionSelectVideo)
		r.Get("/video", app.SessionVideo)
		r.Post("/generate", app.SessionGenerate)
		r.Get("/frames.zip", app.SessionFrames)
	})

	r.Get("/v1/generations", app.GenerationsList)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
