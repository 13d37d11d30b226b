package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-confirm-mailer/internal/application/confirmation"
	"github.com/go-confirm-mailer/internal/config"
	"github.com/go-confirm-mailer/internal/metrics"
	"github.com/go-confirm-mailer/internal/pkg/frontend"
	"github.com/go-confirm-mailer/internal/transport/http/handler"
	appmiddleware "github.com/go-confirm-mailer/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Router is the application HTTP handler. Close releases the rate limiter's
// background goroutine.
type Router struct {
	http.Handler
	limiter *appmiddleware.RateLimiter
}

func (r *Router) Close() { r.limiter.Close() }

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) *Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Applied to the endpoint that sends mail.
	sendRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	svc := confirmation.NewService(confirmation.ServiceDeps{
		Store:        deps.Store,
		Mailer:       deps.Mailer,
		BrandingName: cfg.FromName,
	})

	// Links only point at frontends CORS would let call us.
	resolver := frontend.NewResolver(cfg.FrontendURL, cfg.AllowedOrigins)

	healthH := handler.NewHealthHandler(cfg.FromName)
	confirmH := handler.NewConfirmationHandler(svc, resolver)

	r.Get("/health", healthH.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(sendRL.Limit).Post("/send-subscription-email", confirmH.Send)
		r.Post("/confirm-subscription", confirmH.Confirm)

		if debugRoutes {
			debugH := handler.NewDebugHandler(svc, resolver)
			r.Get("/confirmation-codes", debugH.ListCodes)
			r.Get("/debug/frontend-url", debugH.FrontendURL)
		}
	})

	return &Router{Handler: r, limiter: sendRL}
}
