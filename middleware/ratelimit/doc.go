// Package ratelimit fornece adapters HTTP (net/http) para admissão (rate limit)
// e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão remota/local, acquire/timeout) sem net/http
//   - infra: implementações concretas (redis, janela em memória, semáforo, stats)
//   - ratelimit (este pacote): middlewares HTTP + extração de chave + tradução para status/headers
//
// Fluxo no endpoint administrativo:
//
//  1. Extrai a chave do cliente (header configurado / XFF / X-Real-IP)
//  2. Chama a camada application para obter a decisão
//  3. Se bloqueado, responde 429 com Retry-After e não chama o próximo handler
//  4. Se permitido, chama o próximo handler (auth + registro de comandos)
//
// O endpoint de interações usa apenas o ConcurrencyMiddleware (503 quando lotado).
package ratelimit
