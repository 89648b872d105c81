package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"donationhub/internal/http/handlers"
	"donationhub/internal/middleware"
)

// Options configures the cross-cutting middleware.
type Options struct {
	JWTSecret   string
	CORSOrigins []string
	// TrustProxy rewrites RemoteAddr from forwarding headers. Leave it off
	// unless a proxy in front of the API sets them.
	TrustProxy    bool
	DefaultLocale string
	// CountryLookup resolves a country from the client address. Optional.
	CountryLookup middleware.CountryLookup
	// SubmitPerMinute caps contribution submissions per client address.
	SubmitPerMinute int
	Logger          zerolog.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.CORSOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(opts.JWTSecret))

		r.With(middleware.RateLimit(opts.SubmitPerMinute, time.Minute)).
			Post("/v1/contributions", app.ContributionsCreate)
		r.Get("/v1/contributions/{id}", app.ContributionGet)
		r.Get("/v1/pools/{id}", app.PoolGet)

		r.Get("/v1/notifications", app.NotificationsList)
		r.Post("/v1/notifications/{id}/read", app.NotificationRead)

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/contributions/{id}/approve", app.ContributionApprove)
			r.Post("/contributions/{id}/reject", app.ContributionReject)
			r.Post("/pools", app.PoolsCreate)
			r.Patch("/pools/{id}", app.PoolUpdate)
			r.Post("/reconcile", app.Reconcile)
		})
	})

	return r
}
