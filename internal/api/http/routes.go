package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pairScope/internal/api/http/mw"
)

// BuildRouter mounts the API. metricsHandler and logMW may be nil.
func BuildRouter(api *API, logMW *mw.LoggingMiddleware, metricsHandler http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	if logMW != nil {
		r.Use(logMW.Handler)
	}

	r.Get("/healthz", api.Healthz)
	if metricsHandler != nil {
		r.Mount("/metrics", metricsHandler)
	}

	r.Route("/api", func(apiR chi.Router) {
		apiR.Get("/eth-price", api.EthPrice)
		apiR.Route("/pairs/{address}", func(pr chi.Router) {
			pr.Get("/", api.Pair)
			pr.Get("/hourly", api.Hourly)
		})
	})
	return r
}
