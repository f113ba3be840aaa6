package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

// Key identifica o "balde" de um cliente (ex: IP + email do formulário).
type Key string

// Limiter decide se uma tentativa é aceita agora e, se for, já a registra.
//
// Check precisa ser atômico por chave: ler, filtrar e registrar acontecem
// numa única seção crítica, senão duas chamadas concorrentes podem ver
// count < max e passar juntas.
type Limiter interface {
	Check(Key) Decision
}

// Policy é a configuração fixa da janela deslizante (vale para todos os clientes).
type Policy struct {
	Window time.Duration
	Max    int
}

type Decision struct {
	Allowed bool

	// Limit é o máximo de tentativas aceitas por janela.
	Limit int
	// Remaining é quantas tentativas ainda cabem na janela após esta decisão.
	Remaining int

	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
	// ResetAt é quando a tentativa mais antiga da janela expira.
	ResetAt time.Time
}
