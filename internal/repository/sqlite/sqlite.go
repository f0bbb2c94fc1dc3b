package sqlite

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"doodledash/internal/domain"
	"doodledash/internal/repository"
)

// SecretRepository implements repository.SecretRepository using SQLite
type SecretRepository struct {
	db   *sql.DB
	aead cipher.AEAD
	now  func() time.Time
}

var _ repository.SecretRepository = (*SecretRepository)(nil)

// New opens (creating if needed) the secrets database at dbPath. Secret data
// is sealed with a key derived from passphrase.
func New(dbPath, passphrase string) (*SecretRepository, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("secrets passphrase is required")
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// :memory: databases are per-connection
	db.SetMaxOpenConns(1)

	repo := &SecretRepository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	salt, err := repo.salt()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load key salt: %w", err)
	}

	repo.aead, err = newAEAD(passphrase, salt)
	if err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *SecretRepository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS secrets (
		id TEXT PRIMARY KEY,
		description TEXT,
		data BLOB NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		last_used_at DATETIME,
		usage_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);
	`

	_, err := r.db.Exec(schema)
	return err
}

// salt returns the per-database key salt, creating it on first use
func (r *SecretRepository) salt() ([]byte, error) {
	var salt []byte
	err := r.db.QueryRow(`SELECT value FROM metadata WHERE key = 'kdf_salt'`).Scan(&salt)
	if err == nil {
		return salt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	salt = make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	if _, err := r.db.Exec(`INSERT INTO metadata (key, value) VALUES ('kdf_salt', ?)`, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// PutSecret creates or replaces a secret, keeping its creation time and
// usage statistics
func (r *SecretRepository) PutSecret(ctx context.Context, secret *domain.Secret) error {
	if secret.ID == "" {
		return fmt.Errorf("secret ID is required")
	}
	if len(secret.Data) == 0 {
		return fmt.Errorf("secret %s has no data", secret.ID)
	}

	sealed, err := r.seal(secret.ID, secret.Data)
	if err != nil {
		return fmt.Errorf("failed to seal secret: %w", err)
	}

	now := r.now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO secrets (id, description, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, secret.ID, stringToNull(secret.Description), sealed, now, now)
	if err != nil {
		return fmt.Errorf("failed to put secret: %w", err)
	}
	return nil
}

// GetSecret loads and decrypts a secret
func (r *SecretRepository) GetSecret(ctx context.Context, id string) (*domain.Secret, error) {
	row := &secretRow{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, description, data, created_at, updated_at, last_used_at, usage_count
		FROM secrets WHERE id = ?
	`, id).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("secret %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query secret: %w", err)
	}

	data, err := r.open(row.id, row.data)
	if err != nil {
		return nil, fmt.Errorf("failed to open secret %s: %w", id, err)
	}
	return row.toDomain(data), nil
}

// DeleteSecret removes a secret
func (r *SecretRepository) DeleteSecret(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM secrets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("secret %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

// ListSecrets returns summaries ordered by ID. Data keys are included,
// values are not.
func (r *SecretRepository) ListSecrets(ctx context.Context) ([]domain.SecretSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, data, created_at, updated_at, last_used_at, usage_count
		FROM secrets ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query secrets: %w", err)
	}
	defer rows.Close()

	var summaries []domain.SecretSummary
	for rows.Next() {
		row := &secretRow{}
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan secret: %w", err)
		}
		data, err := r.open(row.id, row.data)
		if err != nil {
			return nil, fmt.Errorf("failed to open secret %s: %w", row.id, err)
		}
		summaries = append(summaries, row.toDomain(data).ToSummary())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating secrets: %w", err)
	}
	return summaries, nil
}

// UpdateSecretUsage bumps the usage counter and last-used time
func (r *SecretRepository) UpdateSecretUsage(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE secrets SET usage_count = usage_count + 1, last_used_at = ? WHERE id = ?
	`, r.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update secret usage: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *SecretRepository) Close() error {
	return r.db.Close()
}
