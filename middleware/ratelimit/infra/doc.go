// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - RedisCounter: INCR + EXPIRE no redis (tier remoto do rate limit)
//   - WindowStore: janela fixa em memória (tier local / fallback)
//   - MemoryStatsStore / RedisStatsStore: estatísticas de admissão
//   - NewSlotPool: semáforo simples para limite de concorrência
package infra
