package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"bench-api/internal/handlers"
	"bench-api/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService service.ChatService
	Demo        *service.DemoService

	// RateLimit is the sustained request rate per second for application
	// routes. Zero or less disables limiting.
	RateLimit      float64
	RateLimitBurst int
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(LoggerMiddleware)
	r.Use(Metrics)
	r.Use(RequestLogger)
	r.Use(Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         3600,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Probes are never rate limited.
	r.Method(http.MethodGet, "/health", handlers.NewHealthHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	demoHandler := handlers.NewDemoHandler(deps.Demo)
	liveChat := handlers.NewChatHandler(deps.ChatService, service.VariantLive)
	mockChat := handlers.NewChatHandler(deps.ChatService, service.VariantMock)

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(newLimiter(deps.RateLimit, deps.RateLimitBurst)))

		r.Get("/user/{user_id}", demoHandler.GetUser)
		r.Get("/users", demoHandler.ListUsers)
		r.Post("/echo", demoHandler.Echo)
		r.Get("/fib/{n}", demoHandler.Fibonacci)
		r.Method(http.MethodPost, "/chat", liveChat)
		r.Method(http.MethodPost, "/chat/mock", mockChat)
	})

	return r
}

func newLimiter(limit float64, burst int) *rate.Limiter {
	if limit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(limit), burst)
}
