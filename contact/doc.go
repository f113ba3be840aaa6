// Package contact implementa a rota de contato: recebe o formulário, valida os
// campos obrigatórios, aplica o rate limit (quando há um) e encaminha o JSON
// para o processador externo, devolvendo a resposta dele ao chamador.
//
// O mesmo Handler serve os dois formatos de implantação:
//
//   - NewRouter: servidor único (chi), com rate limit, /health e /metrics
//   - Routes: uma função por rota, cada uma com seu próprio CORS e sem estado
//     compartilhado (formato serverless)
//
// Toda resposta de erro é {"status":"error","message":...}; detalhes internos
// só vão para o log.
package contact
