package discordapi

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UpstreamError: a API respondeu, mas com status de falha (não retentável ou
// após esgotar as tentativas). Status é o último observado.
type UpstreamError struct {
	Status   int
	Method   string
	Path     string
	Message  string
	Attempts int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("discord api %s %s: status %d after %d attempt(s): %s", e.Method, e.Path, e.Status, e.Attempts, e.Message)
}

// NetworkError: nenhuma tentativa obteve resposta (conexão, DNS, timeout).
type NetworkError struct {
	Method   string
	Path     string
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("discord api %s %s: no response after %d attempt(s): %v", e.Method, e.Path, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// errorMessage usa o campo "message" do corpo de erro da API quando existir.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		return "empty response body"
	}
	return msg
}
