package contact

import (
	"net/http"
	"time"

	"contact-gateway/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Recover transforma panic em 500 com o envelope genérico.
func Recover(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic while handling request",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.Stack("stack"),
				)
				writeError(w, http.StatusInternalServerError, msgInternal)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// StatusClientClosedRequest é o 499 do nginx: o cliente encerrou antes da resposta.
// Só aparece em log e métricas; nunca é enviado.
const StatusClientClosedRequest = 499

// RouteFunc devolve o label de rota para métricas.
type RouteFunc func(r *http.Request) string

// chiRoute usa o padrão de rota do chi (ex: "/api/contact"), nunca o path cru.
func chiRoute(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}

func fixedRoute(route string) RouteFunc {
	return func(*http.Request) string { return route }
}

// Observe loga cada requisição e registra as métricas HTTP.
func Observe(log *zap.Logger, m *metrics.Metrics, route RouteFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
					// nada escrito porque o cliente desistiu (ex: esperando vaga de concorrência)
					if r.Context().Err() != nil {
						status = StatusClientClosedRequest
					}
				}
				d := time.Since(start)
				m.ObserveHTTP(route(r), r.Method, status, d)
				log.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Duration("duration", d),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("user_agent", r.UserAgent()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
