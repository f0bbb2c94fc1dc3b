// Package secrets resolves the secret keys component options refer to.
//
// Keys have the form "id" or "id:field". Resolvers are tried in order by a
// Chain: mounted files and environment variables first, then the operator
// secrets database.
package secrets

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"doodledash/internal/domain"
)

// DefaultEnvPrefix marks environment variables that carry secrets
const DefaultEnvPrefix = "DOODLEDASH_SECRET_"

// Store holds read-only secrets loaded from mounted directories and the
// environment.
//
// A file directly inside a mounted directory is a secret whose "value" field
// is the file content. A subdirectory is a secret whose fields are the files
// inside it, so /run/secrets/router/password resolves "router:password".
//
// DOODLEDASH_SECRET_ROUTER=x resolves "router", and
// DOODLEDASH_SECRET_ROUTER__PASSWORD=x resolves "router:password".
type Store struct {
	dirs      []string
	envPrefix string
	environ   func() []string
	logger    *zap.Logger

	mu      sync.RWMutex
	secrets map[string]*domain.Secret
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithDirs sets the directories scanned for mounted secrets
func WithDirs(dirs ...string) StoreOption {
	return func(s *Store) {
		s.dirs = dirs
	}
}

// WithEnvPrefix sets the environment variable prefix; "" disables
// environment secrets
func WithEnvPrefix(prefix string) StoreOption {
	return func(s *Store) {
		s.envPrefix = prefix
	}
}

// WithEnviron replaces os.Environ, for tests
func WithEnviron(environ func() []string) StoreOption {
	return func(s *Store) {
		s.environ = environ
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty store; call Load to populate it
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		dirs:      []string{"/secrets", "/run/secrets"},
		envPrefix: DefaultEnvPrefix,
		environ:   os.Environ,
		logger:    zap.NewNop(),
		secrets:   make(map[string]*domain.Secret),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load (re)scans the mounted directories and the environment. Missing
// directories and unreadable files are skipped.
func (s *Store) Load() error {
	loaded := make(map[string]*domain.Secret)

	for _, dir := range s.dirs {
		s.loadDir(dir, loaded)
	}
	s.loadEnv(loaded)

	s.mu.Lock()
	s.secrets = loaded
	s.mu.Unlock()

	s.logger.Debug("loaded secrets", zap.Int("count", len(loaded)))
	return nil
}

func (s *Store) loadDir(dir string, into map[string]*domain.Secret) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read secrets directory", zap.String("dir", dir), zap.Error(err))
		}
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		if !entry.IsDir() {
			value, ok := s.readFile(path)
			if !ok {
				continue
			}
			id := strings.TrimSuffix(name, filepath.Ext(name))
			secret := s.upsert(into, id, domain.SecretSourceMounted, path)
			secret.Data[domain.DefaultSecretField] = value
			continue
		}

		fields, err := os.ReadDir(path)
		if err != nil {
			s.logger.Warn("failed to read secret directory", zap.String("path", path), zap.Error(err))
			continue
		}
		for _, field := range fields {
			if field.IsDir() || strings.HasPrefix(field.Name(), ".") {
				continue
			}
			value, ok := s.readFile(filepath.Join(path, field.Name()))
			if !ok {
				continue
			}
			secret := s.upsert(into, name, domain.SecretSourceMounted, path)
			secret.Data[field.Name()] = value
		}
	}
}

func (s *Store) readFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("failed to read mounted secret", zap.String("path", path), zap.Error(err))
		return "", false
	}
	return strings.TrimRight(string(data), "\r\n"), true
}

func (s *Store) loadEnv(into map[string]*domain.Secret) {
	if s.envPrefix == "" {
		return
	}

	for _, kv := range s.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, s.envPrefix) || value == "" {
			continue
		}

		rest := strings.ToLower(strings.TrimPrefix(name, s.envPrefix))
		id, field, found := strings.Cut(rest, "__")
		if !found {
			field = domain.DefaultSecretField
		}
		if id == "" || field == "" {
			continue
		}

		secret := s.upsert(into, id, domain.SecretSourceEnvironment, "environment variable "+name)
		secret.Data[field] = value
	}
}

func (s *Store) upsert(into map[string]*domain.Secret, id string, source domain.SecretSource, origin string) *domain.Secret {
	if secret, ok := into[id]; ok {
		return secret
	}
	now := time.Now()
	secret := &domain.Secret{
		ID:          id,
		Description: "Loaded from " + origin,
		Source:      source,
		Data:        make(map[string]string),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	into[id] = secret
	return secret
}

// Lookup implements domain.SecretResolver
func (s *Store) Lookup(key string) (string, bool) {
	ref, err := domain.ParseSecretRef(key)
	if err != nil {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	secret, ok := s.secrets[ref.ID]
	if !ok {
		return "", false
	}
	value, ok := secret.Data[ref.Field]
	return value, ok
}

// List returns summaries of every loaded secret, ordered by ID
func (s *Store) List() []domain.SecretSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.SecretSummary, 0, len(s.secrets))
	for _, secret := range s.secrets {
		summaries = append(summaries, secret.ToSummary())
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries
}

// Has reports whether a secret with this ID was loaded
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.secrets[id]
	return ok
}
