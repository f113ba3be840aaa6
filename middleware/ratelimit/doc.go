// Package ratelimit fornece as peças HTTP (net/http) do rate limit da rota de
// contato e do limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela deslizante, semáforo, stats)
//   - ratelimit (este pacote): chave do cliente, Guard e middleware de concorrência
//
// Fluxo na rota de contato:
//
//  1. Lê e valida o corpo (o email faz parte da chave)
//  2. Monta a chave com ClientIP + email
//  3. Guard.Check consulta a camada application e escreve Retry-After
//  4. Se bloqueado, o handler responde 429; senão encaminha o formulário
//
// Variáveis de ambiente do binário (cmd/contact-server) controlam o comportamento,
// como CONTACT_RATE_WINDOW, CONTACT_RATE_MAX e CONTACT_CONCURRENCY_MAX.
package ratelimit
