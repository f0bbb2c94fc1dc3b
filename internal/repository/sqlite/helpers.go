package sqlite

import (
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"doodledash/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullToTimePtr safely converts sql.NullTime to *time.Time
func nullToTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// Encryption Helpers
// ============================================================================

const (
	saltSize = 16

	// Argon2id parameters (RFC 9106 second recommended option)
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// newAEAD derives the data key from passphrase and salt
func newAEAD(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return aead, nil
}

// seal encrypts data as nonce||ciphertext. The secret ID is bound as
// additional data so rows cannot be swapped.
func (r *SecretRepository) seal(id string, data map[string]string) ([]byte, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, r.aead.NonceSize(), r.aead.NonceSize()+len(plaintext)+r.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return r.aead.Seal(nonce, nonce, plaintext, []byte(id)), nil
}

// open reverses seal. A wrong passphrase surfaces here.
func (r *SecretRepository) open(id string, sealed []byte) (map[string]string, error) {
	if len(sealed) < r.aead.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := sealed[:r.aead.NonceSize()], sealed[r.aead.NonceSize():]
	plaintext, err := r.aead.Open(nil, nonce, ciphertext, []byte(id))
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong passphrase?): %w", err)
	}

	var data map[string]string
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal secret data: %w", err)
	}
	return data, nil
}

// ============================================================================
// Row Scanning
// ============================================================================

// secretRow holds the raw columns of the secrets table
type secretRow struct {
	id          string
	description sql.NullString
	data        []byte
	createdAt   time.Time
	updatedAt   time.Time
	lastUsedAt  sql.NullTime
	usageCount  int
}

// scanArgs returns pointers in SELECT column order
func (r *secretRow) scanArgs() []interface{} {
	return []interface{}{
		&r.id,
		&r.description,
		&r.data,
		&r.createdAt,
		&r.updatedAt,
		&r.lastUsedAt,
		&r.usageCount,
	}
}

// toDomain converts the row into a domain.Secret with decrypted data
func (r *secretRow) toDomain(data map[string]string) *domain.Secret {
	return &domain.Secret{
		ID:          r.id,
		Description: nullToString(r.description),
		Source:      domain.SecretSourceOperator,
		Data:        data,
		CreatedAt:   r.createdAt,
		UpdatedAt:   r.updatedAt,
		LastUsedAt:  nullToTimePtr(r.lastUsedAt),
		UsageCount:  r.usageCount,
	}
}
