package domain

import (
	"context"
	"time"
)

// StatsEvent é uma decisão do rate limit da rota de contato.
//
// A Key carrega o email enviado no formulário: implementações só guardam
// contadores por chave quando isso for pedido explicitamente.
type StatsEvent struct {
	Key     Key
	Allowed bool
	// Route no formato "MÉTODO /path", ex: "POST /api/contact".
	Route string
	At    time.Time
}

// StatsTotals são os contadores acumulados de decisões.
type StatsTotals struct {
	Allowed int64
	Denied  int64
}

// Add devolve os totais com mais uma decisão contada.
func (t StatsTotals) Add(allowed bool) StatsTotals {
	if allowed {
		t.Allowed++
	} else {
		t.Denied++
	}
	return t
}

// StatsStore registra decisões. Erro é best-effort: nunca derruba a requisição.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

// StatsReader lê os totais acumulados (ex: log no encerramento do processo).
type StatsReader interface {
	Totals(ctx context.Context) (StatsTotals, error)
}

// Stats registra e lê: é o que o processo recebe na inicialização.
type Stats interface {
	StatsStore
	StatsReader
}
