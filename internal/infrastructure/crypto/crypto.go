package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// KeySize is the required key length in bytes (AES-256).
const KeySize = 32

var (
	// ErrInvalidKey is returned when the configured key is not 64 hex characters (32 bytes).
	ErrInvalidKey = errors.New("encryption key must be 64 hex characters (32 bytes)")

	// ErrMalformedCiphertext is returned when a stored value does not have the
	// expected nonce:tag:ciphertext hex encoding.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")

	// ErrIntegrityCheck is returned when the authentication tag does not verify
	// (tampered data or wrong key).
	ErrIntegrityCheck = errors.New("ciphertext integrity check failed")
)

// Encryptor encrypts and decrypts bank API tokens at rest using AES-256-GCM.
// The stored form is three colon-separated lowercase hex fields:
// nonce:tag:ciphertext. A fresh random nonce is drawn per Encrypt call, so
// encrypting the same plaintext twice yields different stored forms.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor creates an Encryptor from a hex-encoded 256-bit key.
// Key misconfiguration is a startup failure, not a per-call error.
func NewEncryptor(hexKey string) (*Encryptor, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Encryptor{aead: aead}, nil
}

// Encrypt encrypts plaintext and returns the nonce:tag:ciphertext stored form.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := e.aead.Seal(nil, nonce, []byte(plaintext), nil)

	// Seal appends the tag to the ciphertext; split them into separate fields.
	tagStart := len(sealed) - e.aead.Overhead()
	ciphertext, tag := sealed[:tagStart], sealed[tagStart:]

	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. It returns ErrMalformedCiphertext if the stored
// form does not have exactly three valid hex fields with a correctly sized
// nonce and tag, and ErrIntegrityCheck if authentication fails.
func (e *Encryptor) Decrypt(stored string) (string, error) {
	if stored == "" {
		return "", nil
	}

	parts := strings.Split(stored, ":")
	if len(parts) != 3 {
		return "", ErrMalformedCiphertext
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", ErrMalformedCiphertext
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", ErrMalformedCiphertext
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", ErrMalformedCiphertext
	}

	if len(nonce) != e.aead.NonceSize() || len(tag) != e.aead.Overhead() {
		return "", ErrMalformedCiphertext
	}

	plaintext, err := e.aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrIntegrityCheck
	}

	return string(plaintext), nil
}

// IsEncrypted reports whether a stored value has the nonce:tag:ciphertext
// structure. It is a structural check only and never attempts decryption;
// it is used to tell legacy plaintext tokens apart from migrated ones.
func IsEncrypted(value string) bool {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		if _, err := hex.DecodeString(p); err != nil {
			return false
		}
	}
	return true
}
