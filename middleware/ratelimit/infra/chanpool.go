package infra

import (
	"context"
	"sync"
)

// ChanPool guarda as vagas de concorrência num channel com buffer.
type ChanPool struct {
	slots chan struct{}
}

// NewChanPool cria um pool com n vagas. n < 1 vira 1.
func NewChanPool(n int) *ChanPool {
	if n < 1 {
		n = 1
	}
	return &ChanPool{slots: make(chan struct{}, n)}
}

// Acquire implementa domain.SlotPool.
func (p *ChanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.slots <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-p.slots }) }, true
	case <-ctx.Done():
		return nil, false
	}
}

// InUse é o número de submissões segurando vaga agora (gauge de métricas).
func (p *ChanPool) InUse() int { return len(p.slots) }

func (p *ChanPool) Cap() int { return cap(p.slots) }
