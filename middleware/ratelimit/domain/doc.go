// Package domain define contratos e tipos de domínio para admissão (rate limit)
// e limite de concorrência.
//
// Este pacote não depende de net/http, redis nem de implementações concretas.
// As camadas application e infra dependem dele, nunca o contrário.
package domain
