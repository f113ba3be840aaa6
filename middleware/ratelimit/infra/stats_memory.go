package infra

import (
	"context"
	"sync"

	"contact-gateway/middleware/ratelimit/domain"
)

// MemoryStatsStore conta decisões em memória, sem expiração.
// É o padrão quando o Redis de estatísticas não está configurado.
type MemoryStatsStore struct {
	mu      sync.Mutex
	total   domain.StatsTotals
	byRoute map[string]domain.StatsTotals
	byKey   map[domain.Key]domain.StatsTotals

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

// WithTrackKeys também conta por cliente (a chave contém o email).
func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byRoute: make(map[string]domain.StatsTotals),
		byKey:   make(map[domain.Key]domain.StatsTotals),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total = s.total.Add(ev.Allowed)
	if ev.Route != "" {
		s.byRoute[ev.Route] = s.byRoute[ev.Route].Add(ev.Allowed)
	}
	if s.trackKeys && ev.Key != "" {
		s.byKey[ev.Key] = s.byKey[ev.Key].Add(ev.Allowed)
	}
	return nil
}

// Totals implementa domain.StatsReader.
func (s *MemoryStatsStore) Totals(context.Context) (domain.StatsTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total, nil
}

// ByRoute devolve uma cópia dos totais por rota.
func (s *MemoryStatsStore) ByRoute() map[string]domain.StatsTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.StatsTotals, len(s.byRoute))
	for k, v := range s.byRoute {
		out[k] = v
	}
	return out
}

// Client devolve os totais de um cliente (zero se trackKeys estiver desligado).
func (s *MemoryStatsStore) Client(key domain.Key) domain.StatsTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byKey[key]
}
