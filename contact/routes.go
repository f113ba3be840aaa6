package contact

import (
	"net/http"

	"contact-gateway/logging"
	"contact-gateway/metrics"
	"contact-gateway/middleware/cors"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RoutesOptions struct {
	Contact        http.Handler
	Health         http.Handler
	AllowedOrigins []string
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
}

// Routes devolve uma função independente por rota, como numa plataforma
// serverless: cada uma com seu CORS, recover e log. "/" responde 404 (e 204 a OPTIONS).
func Routes(opts RoutesOptions) map[string]http.Handler {
	log := logging.OrNop(opts.Logger)
	if opts.Health == nil {
		opts.Health = NewHealthHandler(nil)
	}

	fn := func(route string, h http.Handler) http.Handler {
		h = cors.Handler(cors.Options{AllowedOrigins: opts.AllowedOrigins})(h)
		h = Recover(log)(h)
		h = Observe(log.Named("http"), opts.Metrics, fixedRoute(route))(h)
		return middleware.RequestID(h)
	}

	return map[string]http.Handler{
		"/api/contact": fn("/api/contact", opts.Contact),
		"/api/health":  fn("/api/health", opts.Health),
		"/":            fn("", http.HandlerFunc(notFound)),
	}
}
