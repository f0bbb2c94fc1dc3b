package component

import (
	"fmt"
	"sort"
	"sync"

	"doodledash/internal/domain"
)

// Factory builds a component from its options and the secret resolver.
// Option validation happens here: return *MissingOptionError or
// *InvalidOptionError.
type Factory func(opts Options, secrets domain.SecretResolver) (any, error)

// Registration binds a factory to a (category, type) pair
type Registration struct {
	Category    domain.Category `json:"category"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Factory     Factory         `json:"-"`
}

// Registry maps (category, type) pairs to factories.
// Registration happens once at start-up; lookups are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[domain.Category]map[string]Registration
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[domain.Category]map[string]Registration),
	}
}

// Register adds a factory. Returns *DuplicateError if the type is already
// registered in the same category.
func (r *Registry) Register(reg Registration) error {
	if reg.Type == "" {
		return fmt.Errorf("register %s factory: type is required", reg.Category)
	}
	if reg.Factory == nil {
		return fmt.Errorf("register %s factory '%s': factory is required", reg.Category, reg.Type)
	}
	if _, err := domain.ParseCategory(string(reg.Category)); err != nil {
		return fmt.Errorf("register factory '%s': %w", reg.Type, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byType, ok := r.factories[reg.Category]
	if !ok {
		byType = make(map[string]Registration)
		r.factories[reg.Category] = byType
	}
	if _, exists := byType[reg.Type]; exists {
		return &DuplicateError{Category: reg.Category, Type: reg.Type}
	}

	byType[reg.Type] = reg
	return nil
}

// Lookup returns the registration for a type within a category
func (r *Registry) Lookup(category domain.Category, typeID string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.factories[category][typeID]
	return reg, ok
}

// List returns the registrations of a category sorted by type
func (r *Registry) List(category domain.Category) []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := make([]Registration, 0, len(r.factories[category]))
	for _, reg := range r.factories[category] {
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].Type < regs[j].Type })
	return regs
}
