package repository

import (
	"context"
	"errors"

	"doodledash/internal/domain"
)

// ErrNotFound is returned when a secret does not exist
var ErrNotFound = errors.New("not found")

// SecretRepository defines the interface for operator secret storage
type SecretRepository interface {
	// PutSecret creates or replaces a secret
	PutSecret(ctx context.Context, secret *domain.Secret) error
	// GetSecret returns ErrNotFound if the secret does not exist
	GetSecret(ctx context.Context, id string) (*domain.Secret, error)
	DeleteSecret(ctx context.Context, id string) error
	// ListSecrets returns every secret without its data
	ListSecrets(ctx context.Context) ([]domain.SecretSummary, error)
	// UpdateSecretUsage records that a secret was read by a component
	UpdateSecretUsage(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
