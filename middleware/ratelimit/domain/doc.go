// Package domain reúne os tipos do rate limit da rota de contato: a chave do
// cliente (endereço + email), a decisão da janela deslizante, as estatísticas
// de decisões e o pool de vagas de concorrência.
//
// Nada aqui conhece net/http, Redis ou relógio real.
package domain
