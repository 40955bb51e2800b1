package role

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.RWMutex
	roles []*Role
}

// NewMemoryRepository creates a Repository kept in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(ctx context.Context, role *Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.roles {
		if strings.EqualFold(existing.Name, role.Name) {
			return ErrNameTaken
		}
	}

	role.ID = uuid.NewString()
	role.CreatedAt = time.Now().UTC()
	stored := *role
	r.roles = append(r.roles, &stored)
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Role, error) {
	return r.find(func(role *Role) bool { return role.ID == id })
}

func (r *memoryRepository) GetByName(ctx context.Context, name string) (*Role, error) {
	return r.find(func(role *Role) bool { return strings.EqualFold(role.Name, name) })
}

func (r *memoryRepository) find(match func(*Role) bool) (*Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, role := range r.roles {
		if match(role) {
			c := *role
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) List(ctx context.Context) ([]*Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roles := make([]*Role, 0, len(r.roles))
	for _, role := range r.roles {
		c := *role
		roles = append(roles, &c)
	}
	slices.SortFunc(roles, func(a, b *Role) int { return strings.Compare(a.Name, b.Name) })
	return roles, nil
}
