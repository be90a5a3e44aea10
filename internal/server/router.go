package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sinln/newsletter/internal/logging"
	"github.com/sinln/newsletter/internal/metrics"
	"github.com/sinln/newsletter/internal/model"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Members    CRUDStore[model.Member]
	Topics     CRUDStore[model.Topic]
	Dispatcher Dispatcher

	Log           logging.Logger
	Metrics       metrics.Recorder
	Gatherer      prometheus.Gatherer
	AllowedOrigin string
	RateLimiter   *RateLimiter
}

// NewRouter builds the full route table with the middleware chain
// CORS → request logging → recovery, and rate limiting on the API
// routes. All API operations are POST with JSON bodies.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(NewCORSMiddleware(deps.AllowedOrigin))
	r.Use(NewRequestLogger(deps.Log, deps.Metrics))
	r.Use(NewRecoveryMiddleware(deps.Log))

	memberHandler := newCRUDHandler(deps.Members, deps.Log)
	topicHandler := newCRUDHandler(deps.Topics, deps.Log)
	confirm := &confirmHandler{
		topics:     deps.Topics,
		members:    deps.Members,
		dispatcher: deps.Dispatcher,
		log:        deps.Log,
	}

	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Route("/members", func(r chi.Router) {
			r.Post("/list", memberHandler.list)
			r.Post("/update", memberHandler.update)
			r.Post("/delete", memberHandler.delete)
		})

		r.Route("/topics", func(r chi.Router) {
			r.Post("/list", topicHandler.list)
			r.Post("/update", topicHandler.update)
			r.Post("/delete", topicHandler.delete)
		})

		r.Post("/email/confirm", confirm.confirm)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	return r
}
