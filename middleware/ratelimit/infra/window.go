package infra

import (
	"sync"
	"time"

	"contact-gateway/middleware/ratelimit/domain"
)

// WindowStore é um rate limit de janela deslizante por chave.
//
// Cada chave guarda os instantes das tentativas aceitas dentro da janela.
// Um único mutex protege o mapa: Check (ler, filtrar, registrar) e Sweep
// nunca rodam ao mesmo tempo, então duas chamadas concorrentes da mesma chave
// não passam ambas quando só cabe uma.
type WindowStore struct {
	mu      sync.Mutex
	entries map[string][]time.Time

	window     time.Duration
	max        int
	sweepEvery time.Duration
	now        func() time.Time

	janitorOnce sync.Once
	closeOnce   sync.Once
	stop        chan struct{}
	done        chan struct{}
}

type WindowOption func(*WindowStore)

// WithSweepEvery define o intervalo da limpeza periódica. <= 0 desliga o janitor.
func WithSweepEvery(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.sweepEvery = d }
}

// WithClock troca o relógio (testes).
func WithClock(now func() time.Time) WindowOption {
	return func(s *WindowStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewWindowStore(window time.Duration, max int, opts ...WindowOption) *WindowStore {
	s := &WindowStore{
		entries:    make(map[string][]time.Time),
		window:     window,
		max:        max,
		sweepEvery: 5 * time.Minute,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WindowStore) Policy() domain.Policy {
	return domain.Policy{Window: s.window, Max: s.max}
}

func (s *WindowStore) SweepEvery() time.Duration { return s.sweepEvery }

// Check implementa domain.Limiter.
func (s *WindowStore) Check(key domain.Key) domain.Decision {
	now := s.now()
	k := string(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.filter(s.entries[k], now)
	dec := domain.Decision{Limit: s.max}

	if len(kept) >= s.max {
		if len(kept) == 0 {
			// max <= 0: nada é aceito e não há o que guardar.
			delete(s.entries, k)
			return dec
		}
		s.entries[k] = kept
		dec.ResetAt = kept[0].Add(s.window)
		dec.RetryAfter = dec.ResetAt.Sub(now)
		return dec
	}

	kept = append(kept, now)
	s.entries[k] = kept
	dec.Allowed = true
	dec.Remaining = s.max - len(kept)
	dec.ResetAt = kept[0].Add(s.window)
	return dec
}

// filter descarta, no próprio slice, os instantes fora da janela.
// Os instantes são sempre anexados em ordem, então basta achar o primeiro válido.
// Deve ser chamado com s.mu travado.
func (s *WindowStore) filter(ts []time.Time, now time.Time) []time.Time {
	i := 0
	for i < len(ts) && now.Sub(ts[i]) >= s.window {
		i++
	}
	if i == 0 {
		return ts
	}
	n := copy(ts, ts[i:])
	return ts[:n]
}

// Sweep filtra todas as entradas e remove as que ficaram vazias.
// Retorna quantas chaves foram removidas.
func (s *WindowStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, ts := range s.entries {
		kept := s.filter(ts, now)
		if len(kept) == 0 {
			delete(s.entries, k)
			removed++
			continue
		}
		s.entries[k] = kept
	}
	return removed
}

// Len retorna quantas chaves estão sendo rastreadas.
func (s *WindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartJanitor inicia uma goroutine que roda Sweep periodicamente.
// Pare cancelando o contexto ou chamando Close. Chamadas repetidas são ignoradas.
func (s *WindowStore) StartJanitor(ctx DoneContext) {
	if s.sweepEvery <= 0 {
		return
	}

	s.janitorOnce.Do(func() {
		t := time.NewTicker(s.sweepEvery)
		go func() {
			defer close(s.done)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-s.stop:
					return
				case <-t.C:
					s.Sweep()
				}
			}
		}()
	})
}

// Close para o janitor e espera a goroutine terminar. Idempotente.
func (s *WindowStore) Close() {
	s.closeOnce.Do(func() { close(s.stop) })

	// janitor nunca iniciado: nada para esperar, e impede início futuro.
	s.janitorOnce.Do(func() { close(s.done) })
	<-s.done
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
type DoneContext interface {
	Done() <-chan struct{}
}
