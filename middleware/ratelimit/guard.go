package ratelimit

import (
	"net/http"
	"time"

	"contact-gateway/middleware/ratelimit/application"
	"contact-gateway/middleware/ratelimit/domain"
)

type Options struct {
	Limiter             domain.Limiter
	Stats               domain.StatsStore
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
	Now                 func() time.Time
}

// Guard traduz a decisão do rate limit para HTTP (headers + stats).
//
// Não é um middleware: a chave depende do email, que só existe depois de
// ler e validar o corpo da requisição.
type Guard struct {
	svc        application.Service
	stats      domain.StatsStore
	addHeaders bool
	now        func() time.Time
}

func NewGuard(opts Options) *Guard {
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Guard{
		svc: application.Service{
			Limiter:    opts.Limiter,
			RetryAfter: opts.RetryAfter,
		},
		stats:      opts.Stats,
		addHeaders: opts.AddRateLimitHeaders,
		now:        opts.Now,
	}
}

// Check consulta o limiter para key e escreve os headers de rate limit em w.
// Um Guard nil permite tudo. Não escreve o corpo: quem chama decide o formato do 429.
func (g *Guard) Check(w http.ResponseWriter, r *http.Request, key domain.Key) domain.Decision {
	if g == nil {
		return domain.Decision{Allowed: true}
	}

	dec := g.svc.Decide(key)
	if g.stats != nil {
		_ = g.stats.Record(r.Context(), domain.StatsEvent{
			Key:     key,
			Allowed: dec.Allowed,
			Route:   r.Method + " " + r.URL.Path,
			At:      g.now(),
		})
	}

	if g.addHeaders && dec.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", formatInt(dec.Limit))
		w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
	}
	if !dec.Allowed {
		w.Header().Set("Retry-After", formatSeconds(dec.RetryAfter))
	}
	return dec
}
