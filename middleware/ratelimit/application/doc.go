// Package application contém os casos de uso (regras de aplicação) para admissão
// e limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http nem redis.
// Ex.: Service.Decide(ctx, key) retorna uma Decision (allow/deny + retry-after + tier).
package application
