// Package cors aplica a política de CORS das rotas de contato.
//
// Política:
//   - Access-Control-Allow-Origin ecoa a origem só se ela estiver na allow-list;
//     fora da lista o header é omitido (nunca "*", nunca um domínio fixo de fallback)
//   - Allow-Methods, Allow-Headers e Allow-Credentials vão em toda resposta
//   - qualquer OPTIONS, em qualquer rota, responde 204 sem corpo
//
// A negociação de origem (match, Vary) fica com github.com/go-chi/cors.
package cors

import (
	"net/http"
	"strings"

	chicors "github.com/go-chi/cors"
)

var (
	DefaultMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	DefaultHeaders = []string{"Content-Type", "Authorization"}
)

type Options struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	// MaxAge em segundos para cache do preflight. 0 omite o header.
	MaxAge int
}

// Handler devolve o middleware de CORS.
func Handler(opts Options) func(next http.Handler) http.Handler {
	if len(opts.AllowedMethods) == 0 {
		opts.AllowedMethods = DefaultMethods
	}
	if len(opts.AllowedHeaders) == 0 {
		opts.AllowedHeaders = DefaultHeaders
	}

	allowed := make(map[string]struct{}, len(opts.AllowedOrigins))
	for _, o := range opts.AllowedOrigins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	negotiate := chicors.Handler(chicors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			_, ok := allowed[origin]
			return ok
		},
		AllowedMethods:     opts.AllowedMethods,
		AllowedHeaders:     opts.AllowedHeaders,
		AllowCredentials:   true,
		MaxAge:             opts.MaxAge,
		OptionsPassthrough: true,
	})

	methods := strings.Join(opts.AllowedMethods, ", ")
	headers := strings.Join(opts.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		fixed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			setDefault(h, "Access-Control-Allow-Methods", methods)
			setDefault(h, "Access-Control-Allow-Headers", headers)
			setDefault(h, "Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
		return negotiate(fixed)
	}
}

func setDefault(h http.Header, key, value string) {
	if h.Get(key) == "" {
		h.Set(key, value)
	}
}
