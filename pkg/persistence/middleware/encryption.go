package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

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
	next   ports.RunStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals run records with
// AES-GCM before they reach the underlying store. The stored envelope keeps
// ID, Status, and CreatedAt readable so listing and monitoring work without
// keys; the request text, diagnostics, and paths live in the sealed payload.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.RunStore) ports.RunStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, record domain.RunRecord) error {
	plain, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal run record: %w", err)
	}

	ciphertext, err := encrypt(plain, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("encrypt run record: %w", err)
	}

	envelope := domain.RunRecord{
		ID:        record.ID,
		Status:    record.Status,
		CreatedAt: record.CreatedAt,
		Sealed:    base64.StdEncoding.EncodeToString(ciphertext),
	}
	return m.next.Save(ctx, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, id string) (domain.RunRecord, error) {
	envelope, err := m.next.Load(ctx, id)
	if err != nil {
		return domain.RunRecord{}, err
	}
	return m.unseal(envelope)
}

// List unseals what it can. Plaintext records written before encryption was
// enabled pass through; sealed records that no configured key opens are
// dropped from the listing.
func (m *encryptionMiddleware) List(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	envelopes, err := m.next.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	records := make([]domain.RunRecord, 0, len(envelopes))
	for _, envelope := range envelopes {
		if envelope.Sealed == "" {
			records = append(records, envelope)
			continue
		}
		record, err := m.unseal(envelope)
		if err != nil {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

// unseal decrypts an envelope back into the original record. A record
// without a sealed payload fails closed: once encryption is configured,
// plaintext loads are refused rather than passed through.
func (m *encryptionMiddleware) unseal(envelope domain.RunRecord) (domain.RunRecord, error) {
	if envelope.Sealed == "" {
		return domain.RunRecord{}, errors.New("run record is missing its sealed payload")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Sealed)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("decode sealed payload: %w", err)
	}

	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("decrypt run record: %w", err)
	}

	var record domain.RunRecord
	if err := json.Unmarshal(plain, &record); err != nil {
		return domain.RunRecord{}, fmt.Errorf("decode run record: %w", err)
	}
	return record, nil
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
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	// Try fallbacks in order
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
