package ratelimit

import (
	"errors"
	"net/http"
	"time"

	"contact-gateway/middleware/ratelimit/application"
	"contact-gateway/middleware/ratelimit/infra"
)

// RejectFunc escreve a resposta de rejeição. O padrão é http.Error com o texto do status.
type RejectFunc func(w http.ResponseWriter, r *http.Request, status int, err error)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	Reject         RejectFunc
	// Pool permite observar a ocupação (ex: gauge de métricas). Se nil, um é criado com Max.
	Pool *infra.ChanPool
}

func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 && opts.Pool == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.Reject == nil {
		opts.Reject = func(w http.ResponseWriter, _ *http.Request, status int, _ error) {
			http.Error(w, http.StatusText(status), status)
		}
	}
	if opts.Pool == nil {
		opts.Pool = infra.NewChanPool(opts.Max)
	}

	svc := application.ConcurrencyService{
		Pool:           opts.Pool,
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := svc.Acquire(r.Context())
			if err != nil {
				if errors.Is(err, application.ErrNoSlot) {
					opts.Reject(w, r, opts.RejectStatus, err)
				}
				// cliente desistiu: não há para quem responder.
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
