package domain

import "context"

// SlotPool limita quantas submissões ficam em voo ao mesmo tempo; cada uma
// segura uma vaga enquanto espera o processador externo.
//
// Acquire espera uma vaga até o ctx encerrar. O release devolvido deve ser
// chamado exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
