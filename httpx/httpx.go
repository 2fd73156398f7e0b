// Package httpx reúne utilitários de request/response compartilhados pelos
// handlers: identificação do cliente, correlation id e escrita de respostas.
package httpx

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderRealIP       = "X-Real-IP"
	HeaderRequestID    = "X-Request-Id"

	UnknownClient = "unknown"
)

// ClientIP devolve o primeiro IP do X-Forwarded-For (cliente original),
// depois X-Real-IP e, sem nenhum dos dois, "unknown".
//
// RemoteAddr não é usado: atrás do proxy ele é sempre o próprio proxy.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get(HeaderForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get(HeaderRealIP)); ip != "" {
		return ip
	}
	return UnknownClient
}

// RequestID reaproveita o X-Request-Id do chamador ou gera um UUID novo.
func RequestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(HeaderRequestID)); id != "" {
		return id
	}
	return uuid.NewString()
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
