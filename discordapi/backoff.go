package discordapi

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// linearBackOff espera base*n antes da tentativa n+1, a menos que a última
// resposta tenha trazido um Retry-After positivo.
type linearBackOff struct {
	base time.Duration
	n    int
	hint time.Duration
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	if b.hint > 0 {
		d := b.hint
		b.hint = 0
		return d
	}
	return b.base * time.Duration(b.n)
}

func (b *linearBackOff) Reset() {
	b.n = 0
	b.hint = 0
}

// parseRetryAfter aceita segundos numéricos (inclusive fracionários, como a
// Discord envia). Datas HTTP e valores não positivos são ignorados.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
