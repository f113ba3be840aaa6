// Package application decide, sem conhecer HTTP, se uma submissão passa pelo
// rate limit (Service) e se ganha uma vaga de concorrência (ConcurrencyService).
package application
