package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"doodledash/internal/domain"
	"doodledash/internal/repository"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *SecretRepository {
	t.Helper()
	repo, err := New(":memory:", "test-passphrase")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// ============================================================================
// Helper Function Tests
// ============================================================================

func TestNullToString(t *testing.T) {
	tests := []struct {
		name string
		in   sql.NullString
		want string
	}{
		{name: "valid", in: sql.NullString{String: "x", Valid: true}, want: "x"},
		{name: "null", in: sql.NullString{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEqual(t, tt.want, nullToString(tt.in))
		})
	}
}

func TestStringToNull(t *testing.T) {
	assertEqual(t, sql.NullString{}, stringToNull(""))
	assertEqual(t, sql.NullString{String: "a", Valid: true}, stringToNull("a"))
}

func TestNullToTimePtr(t *testing.T) {
	if nullToTimePtr(sql.NullTime{}) != nil {
		t.Fatal("expected nil for invalid time")
	}
	now := time.Now()
	got := nullToTimePtr(sql.NullTime{Time: now, Valid: true})
	if got == nil || !got.Equal(now) {
		t.Fatalf("expected %v, got %v", now, got)
	}
}

func TestSealOpen(t *testing.T) {
	repo := newTestRepo(t)
	data := map[string]string{"username": "admin", "password": "hunter2"}

	sealed, err := repo.seal("router", data)
	assertNoError(t, err)

	opened, err := repo.open("router", sealed)
	assertNoError(t, err)
	assertEqual(t, data, opened)

	t.Run("bound to id", func(t *testing.T) {
		if _, err := repo.open("switch", sealed); err == nil {
			t.Fatal("expected error opening under a different id")
		}
	})

	t.Run("short ciphertext", func(t *testing.T) {
		if _, err := repo.open("router", []byte{1, 2, 3}); err == nil {
			t.Fatal("expected error for short ciphertext")
		}
	})
}

// ============================================================================
// Repository Tests
// ============================================================================

func TestNewRequiresPassphrase(t *testing.T) {
	if _, err := New(":memory:", ""); err == nil {
		t.Fatal("expected error without passphrase")
	}
}

func TestPutAndGetSecret(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.PutSecret(ctx, &domain.Secret{
		ID:          "router",
		Description: "Core router",
		Data:        map[string]string{"username": "admin", "password": "hunter2"},
	})
	assertNoError(t, err)

	got, err := repo.GetSecret(ctx, "router")
	assertNoError(t, err)
	assertEqual(t, "router", got.ID)
	assertEqual(t, "Core router", got.Description)
	assertEqual(t, domain.SecretSourceOperator, got.Source)
	assertEqual(t, "hunter2", got.Data["password"])
	assertEqual(t, 0, got.UsageCount)
	if got.LastUsedAt != nil {
		t.Fatalf("expected nil LastUsedAt, got %v", got.LastUsedAt)
	}
}

func TestPutSecretValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.PutSecret(ctx, &domain.Secret{Data: map[string]string{"value": "x"}}); err == nil {
		t.Fatal("expected error for empty ID")
	}
	if err := repo.PutSecret(ctx, &domain.Secret{ID: "empty"}); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestPutSecretReplaces(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assertNoError(t, repo.PutSecret(ctx, &domain.Secret{ID: "token", Data: map[string]string{"value": "old"}}))
	first, err := repo.GetSecret(ctx, "token")
	assertNoError(t, err)

	assertNoError(t, repo.UpdateSecretUsage(ctx, "token"))
	assertNoError(t, repo.PutSecret(ctx, &domain.Secret{ID: "token", Data: map[string]string{"value": "new"}}))

	got, err := repo.GetSecret(ctx, "token")
	assertNoError(t, err)
	assertEqual(t, "new", got.Data["value"])
	assertEqual(t, 1, got.UsageCount)
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at changed from %v to %v", first.CreatedAt, got.CreatedAt)
	}
}

func TestGetSecretNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetSecret(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSecret(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assertNoError(t, repo.PutSecret(ctx, &domain.Secret{ID: "token", Data: map[string]string{"value": "x"}}))
	assertNoError(t, repo.DeleteSecret(ctx, "token"))

	if _, err := repo.GetSecret(ctx, "token"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteSecret(ctx, "token"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestListSecrets(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assertNoError(t, repo.PutSecret(ctx, &domain.Secret{ID: "zeta", Data: map[string]string{"value": "1"}}))
	assertNoError(t, repo.PutSecret(ctx, &domain.Secret{ID: "alpha", Data: map[string]string{"username": "u", "password": "p"}}))

	summaries, err := repo.ListSecrets(ctx)
	assertNoError(t, err)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	assertEqual(t, "alpha", summaries[0].ID)
	assertEqual(t, []string{"password", "username"}, summaries[0].DataKeys)
	assertEqual(t, "zeta", summaries[1].ID)
}

func TestUpdateSecretUsage(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	assertNoError(t, repo.PutSecret(ctx, &domain.Secret{ID: "token", Data: map[string]string{"value": "x"}}))
	assertNoError(t, repo.UpdateSecretUsage(ctx, "token"))
	assertNoError(t, repo.UpdateSecretUsage(ctx, "token"))

	got, err := repo.GetSecret(ctx, "token")
	assertNoError(t, err)
	assertEqual(t, 2, got.UsageCount)
	if got.LastUsedAt == nil || !got.LastUsedAt.Equal(fixed) {
		t.Fatalf("expected last used %v, got %v", fixed, got.LastUsedAt)
	}
}

func TestWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.db")
	ctx := context.Background()

	repo, err := New(path, "right")
	assertNoError(t, err)
	assertNoError(t, repo.PutSecret(ctx, &domain.Secret{ID: "token", Data: map[string]string{"value": "x"}}))
	assertNoError(t, repo.Close())

	reopened, err := New(path, "right")
	assertNoError(t, err)
	got, err := reopened.GetSecret(ctx, "token")
	assertNoError(t, err)
	assertEqual(t, "x", got.Data["value"])
	assertNoError(t, reopened.Close())

	wrong, err := New(path, "wrong")
	assertNoError(t, err)
	defer wrong.Close()
	if _, err := wrong.GetSecret(ctx, "token"); err == nil {
		t.Fatal("expected decryption error with wrong passphrase")
	}
}
