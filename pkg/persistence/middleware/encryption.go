package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/ports"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// ErrNotSealed is returned by Load when the stored session carries no encrypted body.
var ErrNotSealed = errors.New("session is missing encrypted data envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.SessionStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts sessions at rest using AES-GCM.
// Only the ID and the start and end times stay readable, so stores can still index and expire sessions.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != KeySize {
		return nil, fmt.Errorf("active key must be %d bytes (AES-256), got %d", KeySize, len(config.ActiveKey))
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

// ParseKey decodes a 32-byte key given as hex or standard base64.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if key, err := hex.DecodeString(s); err == nil && len(key) == KeySize {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(s); err == nil && len(key) == KeySize {
		return key, nil
	}
	return nil, fmt.Errorf("encryption key must be %d bytes encoded as hex or base64", KeySize)
}

func (m *encryptionMiddleware) Save(ctx context.Context, session *domain.Session) error {
	plainText, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt session: %w", err)
	}

	envelope := &domain.Session{
		ID:        session.ID,
		StartedAt: session.StartedAt,
		EndedAt:   session.EndedAt,
		Sealed:    base64.StdEncoding.EncodeToString(ciphertext),
	}
	return m.next.Save(ctx, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Fail secure: a plain session in an encrypted store is rejected.
	if envelope.Sealed == "" {
		return nil, ErrNotSealed
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(plainText, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted session: %w", err)
	}
	session.Sealed = ""
	return &session, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
