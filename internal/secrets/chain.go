package secrets

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"doodledash/internal/domain"
	"doodledash/internal/repository"
)

// Chain tries each resolver in order and returns the first hit
type Chain []domain.SecretResolver

// Lookup implements domain.SecretResolver
func (c Chain) Lookup(key string) (string, bool) {
	for _, r := range c {
		if r == nil {
			continue
		}
		if v, ok := r.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// RepositoryResolver resolves keys against the operator secrets database
// and records usage
type RepositoryResolver struct {
	repo    repository.SecretRepository
	timeout time.Duration
	logger  *zap.Logger
}

// NewRepositoryResolver wraps repo. Each lookup is bounded by timeout.
func NewRepositoryResolver(repo repository.SecretRepository, logger *zap.Logger) *RepositoryResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepositoryResolver{repo: repo, timeout: 5 * time.Second, logger: logger}
}

// Lookup implements domain.SecretResolver
func (r *RepositoryResolver) Lookup(key string) (string, bool) {
	ref, err := domain.ParseSecretRef(key)
	if err != nil {
		return "", false
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	secret, err := r.repo.GetSecret(ctx, ref.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			r.logger.Warn("failed to read operator secret", zap.String("id", ref.ID), zap.Error(err))
		}
		return "", false
	}

	value, ok := secret.Data[ref.Field]
	if !ok {
		return "", false
	}

	if err := r.repo.UpdateSecretUsage(ctx, ref.ID); err != nil {
		r.logger.Warn("failed to record secret usage", zap.String("id", ref.ID), zap.Error(err))
	}
	return value, true
}
