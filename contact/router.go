package contact

import (
	"net/http"
	"time"

	"contact-gateway/logging"
	"contact-gateway/metrics"
	"contact-gateway/middleware/cors"
	"contact-gateway/middleware/ratelimit"
	"contact-gateway/middleware/ratelimit/infra"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterOptions struct {
	Contact http.Handler
	Health  http.Handler
	// Metrics nil desliga /metrics.
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	Logger         *zap.Logger

	// ConcurrencyMax limita requisições em voo na rota de contato. 0 desliga.
	ConcurrencyMax     int
	ConcurrencyTimeout time.Duration
}

// NewRouter monta o servidor único: /api/contact, /health e /metrics.
func NewRouter(opts RouterOptions) chi.Router {
	log := logging.OrNop(opts.Logger)
	if opts.Health == nil {
		opts.Health = NewHealthHandler(nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(Observe(log.Named("http"), opts.Metrics, chiRoute))
	r.Use(Recover(log))
	r.Use(cors.Handler(cors.Options{AllowedOrigins: opts.AllowedOrigins}))

	r.Method(http.MethodGet, "/health", opts.Health)
	r.Method(http.MethodHead, "/health", opts.Health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	contact := opts.Contact
	if opts.ConcurrencyMax > 0 {
		pool := infra.NewChanPool(opts.ConcurrencyMax)
		opts.Metrics.GaugeFunc("http", "inflight_contact_requests", "Contact requests currently holding a concurrency slot.",
			func() float64 { return float64(pool.InUse()) })
		contact = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
			Pool:           pool,
			AcquireTimeout: opts.ConcurrencyTimeout,
			Reject: func(w http.ResponseWriter, r *http.Request, status int, err error) {
				log.Warn("contact request rejected", zap.Int("status", status), zap.Error(err),
					zap.String("request_id", middleware.GetReqID(r.Context())))
				writeError(w, status, msgBusy)
			},
		})(contact)
	}
	r.Handle("/api/contact", contact)

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)
	return r
}
