package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HMACSignatureService implements ports.SignatureService using HMAC-SHA256
// over the raw webhook body.
type HMACSignatureService struct{}

// NewHMACSignatureService creates a new HMAC-SHA256 signature service.
func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign computes HMAC-SHA256 of payload using secret.
// Returns lowercase hex-encoded signature.
func (s *HMACSignatureService) Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks if signature matches HMAC-SHA256(secret, payload). payload
// must be the body exactly as received. Never errors: an empty secret or
// header is simply a mismatch.
func (s *HMACSignatureService) Verify(secret string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := s.Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}
