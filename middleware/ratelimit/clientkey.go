package ratelimit

import (
	"net"
	"net/http"
	"strings"

	"contact-gateway/middleware/ratelimit/domain"
)

// ClientIP resolve o IP do cliente.
// Com trustXFF, usa o primeiro IP do X-Forwarded-For (cliente original, atrás de proxy).
func ClientIP(r *http.Request, trustXFF bool) string {
	if trustXFF {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}

	// fallback: RemoteAddr
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// ClientKey monta a chave do rate limit: endereço + email enviado.
// Email vazio cai para só o endereço.
func ClientKey(ip, email string) domain.Key {
	return domain.Key(ip + email)
}
