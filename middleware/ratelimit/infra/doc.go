// Package infra implementa os contratos de domain:
//
//   - WindowStore: janela deslizante por cliente, com janitor que descarta clientes inativos
//   - ChanPool: vagas de concorrência da rota de contato
//   - MemoryStatsStore / RedisStatsStore: totais de decisões, por rota e (opcionalmente) por cliente
package infra
