package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SecretSource indicates where a secret originated
type SecretSource string

const (
	// SecretSourceMounted indicates a secret mounted as files (K8s/Docker)
	SecretSourceMounted SecretSource = "mounted"
	// SecretSourceEnvironment indicates a secret read from environment variables
	SecretSourceEnvironment SecretSource = "environment"
	// SecretSourceOperator indicates a secret stored with `secrets put`
	SecretSourceOperator SecretSource = "operator"
)

// DefaultSecretField is used when a reference does not name a field
const DefaultSecretField = "value"

// Secret is a named set of sensitive key-value pairs, e.g. the username and
// private_key of an SSH login
type Secret struct {
	// ID is the unique identifier (e.g., "router", "ci.token")
	ID string `json:"id"`

	// Description explains what this secret is for
	Description string `json:"description,omitempty"`

	// Source indicates where the secret came from
	Source SecretSource `json:"source"`

	// Data holds the secret values
	Data map[string]string `json:"data,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	UsageCount int        `json:"usage_count"`
}

// SecretSummary is a safe view of a secret (no sensitive data)
type SecretSummary struct {
	ID          string       `json:"id"`
	Description string       `json:"description,omitempty"`
	Source      SecretSource `json:"source"`
	UpdatedAt   time.Time    `json:"updated_at"`
	LastUsedAt  *time.Time   `json:"last_used_at,omitempty"`
	UsageCount  int          `json:"usage_count"`
	// DataKeys lists the keys in Data without exposing values
	DataKeys []string `json:"data_keys"`
}

// ToSummary creates a safe summary view of the secret
func (s *Secret) ToSummary() SecretSummary {
	keys := make([]string, 0, len(s.Data))
	for k := range s.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return SecretSummary{
		ID:          s.ID,
		Description: s.Description,
		Source:      s.Source,
		UpdatedAt:   s.UpdatedAt,
		LastUsedAt:  s.LastUsedAt,
		UsageCount:  s.UsageCount,
		DataKeys:    keys,
	}
}

// SecretRef points at one field of a secret
type SecretRef struct {
	ID    string
	Field string
}

// ParseSecretRef parses "id" or "id:field". The field defaults to "value".
func ParseSecretRef(key string) (SecretRef, error) {
	id, field, found := strings.Cut(key, ":")
	id = strings.TrimSpace(id)
	field = strings.TrimSpace(field)

	if id == "" {
		return SecretRef{}, fmt.Errorf("secret reference %q has no id", key)
	}
	if !found {
		field = DefaultSecretField
	} else if field == "" {
		return SecretRef{}, fmt.Errorf("secret reference %q has an empty field", key)
	}
	return SecretRef{ID: id, Field: field}, nil
}

func (r SecretRef) String() string {
	return r.ID + ":" + r.Field
}
