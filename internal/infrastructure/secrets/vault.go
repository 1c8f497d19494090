package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const keySize = 32 // AES-256

// Vault encrypts, decrypts, and masks third-party API credentials.
// Ciphertexts are AES-256-GCM, encoded as base64(nonce || sealed).
type Vault struct {
	aead cipher.AEAD
}

// New creates a vault from a hex-encoded 32-byte key. When hexKey is
// empty, a volatile key is generated for this process: anything encrypted
// with it becomes undecryptable after a restart, so the condition is
// logged at error level.
func New(hexKey string, logger *zap.Logger) (*Vault, error) {
	var key []byte
	if hexKey == "" {
		key = make([]byte, keySize)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return nil, fmt.Errorf("generating volatile vault key: %w", err)
		}
		logger.Error("No vault key configured, generated a volatile key; stored secrets will not survive a restart. Set vault.key to a persistent 32-byte hex key.")
	} else {
		decoded, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, fmt.Errorf("vault key is not valid hex: %w", err)
		}
		if len(decoded) != keySize {
			return nil, fmt.Errorf("vault key must be %d bytes, got %d", keySize, len(decoded))
		}
		key = decoded
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating vault cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating vault AEAD: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// Encrypt seals a plaintext secret into an opaque string
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an opaque string produced by Encrypt
func (v *Vault) Decrypt(opaque string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(opaque)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}
	nonceSize := v.aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}
	plaintext, err := v.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("opening ciphertext: %w", err)
	}
	return string(plaintext), nil
}

// Mask returns a display string for a secret: the first and last four
// characters around a fixed filler, or just the filler for short secrets.
func Mask(plaintext string) string {
	if len(plaintext) <= 8 {
		return "****"
	}
	var b strings.Builder
	b.WriteString(plaintext[:4])
	b.WriteString("****")
	b.WriteString(plaintext[len(plaintext)-4:])
	return b.String()
}
