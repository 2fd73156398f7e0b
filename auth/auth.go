// Package auth reúne as comparações de credenciais usadas pelos endpoints
// administrativos.
package auth

import (
	"crypto/subtle"
	"strings"
)

// SecureCompare compara em tempo constante. Falha fechado quando qualquer um
// dos lados está vazio (segredo não configurado nunca autentica).
func SecureCompare(expected, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}

// BearerToken extrai o token de "Authorization: Bearer <token>".
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// Authorized junta BearerToken e SecureCompare.
func Authorized(header, expected string) bool {
	token, ok := BearerToken(header)
	if !ok {
		return false
	}
	return SecureCompare(expected, token)
}
