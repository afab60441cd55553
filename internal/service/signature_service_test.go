package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testWebhookBody = `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_29QQoUBi66xm2f","amount":50000,"notes":{"internal_order_id":"42"}}}}}`

func TestHMACSignatureService_SignAndVerify(t *testing.T) {
	svc := NewHMACSignatureService()
	secret := "whsec_test"
	body := []byte(testWebhookBody)

	signature := svc.Sign(secret, body)

	// Should be lowercase hex
	assert.Regexp(t, `^[0-9a-f]{64}$`, signature, "signature should be 64-char lowercase hex (SHA-256)")
	assert.True(t, svc.Verify(secret, body, signature))
}

func TestHMACSignatureService_KnownVector(t *testing.T) {
	svc := NewHMACSignatureService()

	// RFC 4231 test case 2
	got := svc.Sign("Jefe", []byte("what do ya want for nothing?"))
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", got)
}

func TestHMACSignatureService_VerifyFails_WrongKey(t *testing.T) {
	svc := NewHMACSignatureService()
	body := []byte(testWebhookBody)

	signature := svc.Sign("correct-key", body)
	assert.False(t, svc.Verify("wrong-key", body, signature))
}

func TestHMACSignatureService_VerifyFails_EmptyInputs(t *testing.T) {
	svc := NewHMACSignatureService()
	body := []byte(testWebhookBody)

	assert.False(t, svc.Verify("", body, svc.Sign("", body)), "empty secret never verifies")
	assert.False(t, svc.Verify("key", body, ""), "missing header never verifies")
	assert.False(t, svc.Verify("key", body, "invalidsignature"))
}

func TestHMACSignatureService_ReserializedBodyFails(t *testing.T) {
	svc := NewHMACSignatureService()
	original := []byte(`{"event": "payment.captured"}`)
	compacted := []byte(`{"event":"payment.captured"}`)

	signature := svc.Sign("key", original)
	assert.False(t, svc.Verify("key", compacted, signature), "whitespace changes must break the signature")
}

func TestHMACSignatureService_BitFlips(t *testing.T) {
	svc := NewHMACSignatureService()
	secret := "whsec_test"
	body := []byte(testWebhookBody)
	signature := svc.Sign(secret, body)

	t.Run("body", func(t *testing.T) {
		for i := range body {
			for bit := 0; bit < 8; bit++ {
				mutated := append([]byte(nil), body...)
				mutated[i] ^= 1 << bit
				if svc.Verify(secret, mutated, signature) {
					t.Fatalf("flip of bit %d in byte %d still verified", bit, i)
				}
			}
		}
	})

	t.Run("signature", func(t *testing.T) {
		sig := []byte(signature)
		for i := range sig {
			for bit := 0; bit < 8; bit++ {
				mutated := append([]byte(nil), sig...)
				mutated[i] ^= 1 << bit
				if svc.Verify(secret, body, string(mutated)) {
					t.Fatalf("flip of bit %d in signature byte %d still verified", bit, i)
				}
			}
		}
	})
}

func TestHMACSignatureService_DeterministicSign(t *testing.T) {
	svc := NewHMACSignatureService()

	sig1 := svc.Sign("key", []byte("data"))
	sig2 := svc.Sign("key", []byte("data"))

	assert.Equal(t, sig1, sig2, "same key+payload should produce same signature")
}
