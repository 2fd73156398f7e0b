// Package interactions recebe os webhooks de interação: autentica a
// assinatura Ed25519, decodifica o envelope e despacha para o comando.
package interactions

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

var ErrInvalidPublicKey = errors.New("invalid ed25519 public key")

// Verify confere a assinatura de timestamp||rawBody. Hex malformado, tamanhos
// errados ou assinatura divergente retornam false; nunca entra em pânico.
func Verify(rawBody []byte, signatureHex, timestamp, publicKeyHex string) bool {
	key, err := parsePublicKey(publicKeyHex)
	if err != nil {
		return false
	}
	return verifyWith(key, rawBody, signatureHex, timestamp)
}

// Verifier guarda a chave pública já decodificada.
type Verifier struct {
	key ed25519.PublicKey
}

func NewVerifier(publicKeyHex string) (*Verifier, error) {
	key, err := parsePublicKey(publicKeyHex)
	if err != nil {
		return nil, err
	}
	return &Verifier{key: key}, nil
}

func (v *Verifier) Verify(rawBody []byte, signatureHex, timestamp string) bool {
	if v == nil {
		return false
	}
	return verifyWith(v.key, rawBody, signatureHex, timestamp)
}

func parsePublicKey(publicKeyHex string) (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(publicKeyHex))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

func verifyWith(key ed25519.PublicKey, rawBody []byte, signatureHex, timestamp string) bool {
	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	msg := make([]byte, 0, len(timestamp)+len(rawBody))
	msg = append(msg, timestamp...)
	msg = append(msg, rawBody...)
	return ed25519.Verify(key, msg, sig)
}
