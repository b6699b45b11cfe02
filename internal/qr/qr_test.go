package qr_test

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-cinema/internal/qr"
)

func TestGenerateEncryptedQR_ProducesPNG(t *testing.T) {
	gen := qr.NewGenerator("test-secret")

	png, err := gen.GenerateEncryptedQR("ticket-123")

	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestDecryptPayload_RoundTrip(t *testing.T) {
	gen := qr.NewGenerator("test-secret")

	payload := encryptForTest(t, "test-secret", "ticket-123")
	ticketNumber, err := gen.DecryptPayload(payload)

	assert.NoError(t, err)
	assert.Equal(t, "ticket-123", ticketNumber)
}

func TestDecryptPayload_WrongSecret(t *testing.T) {
	gen := qr.NewGenerator("other-secret")

	payload := encryptForTest(t, "test-secret", "ticket-123")
	ticketNumber, err := gen.DecryptPayload(payload)

	// CFB with the wrong key yields garbage, not an error
	assert.NoError(t, err)
	assert.NotEqual(t, "ticket-123", ticketNumber)
}

func TestDecryptPayload_Malformed(t *testing.T) {
	gen := qr.NewGenerator("test-secret")

	_, err := gen.DecryptPayload("not-base64!!!")
	assert.Error(t, err)

	_, err = gen.DecryptPayload(base64.URLEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}

// encryptForTest mirrors the generator's payload format so tests can build
// payloads without decoding a rendered QR image.
func encryptForTest(t *testing.T, secret, plaintext string) string {
	hashed := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(hashed[:])
	assert.NoError(t, err)

	data := []byte(plaintext)
	ciphertext := make([]byte, aes.BlockSize+len(data))
	_, err = io.ReadFull(rand.Reader, ciphertext[:aes.BlockSize])
	assert.NoError(t, err)

	stream := cipher.NewCFBEncrypter(block, ciphertext[:aes.BlockSize])
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext)
}
