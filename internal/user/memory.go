package user

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.RWMutex
	ids   []string // insertion order
	users map[string]*User
	// memberships holds one entry per user_roles row.
	memberships map[string][]RoleBrief
	now         func() time.Time
}

// NewMemoryRepository creates a Repository kept in process memory.
// It enforces the same case-insensitive uniqueness rules as the Postgres schema.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		users:       make(map[string]*User),
		memberships: make(map[string][]RoleBrief),
		now:         time.Now,
	}
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.snapshot(u), nil
}

func (r *memoryRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.findFirst(func(u *User) bool { return fold(u.Username) == fold(username) })
}

func (r *memoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.findFirst(func(u *User) bool { return fold(u.Email) == fold(email) })
}

func (r *memoryRepository) findFirst(match func(*User) bool) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.ids {
		if u := r.users[id]; match(u) {
			return r.snapshot(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) FindAll(ctx context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*User, 0, len(r.ids))
	for _, id := range r.ids {
		users = append(users, r.users[id])
	}
	sortUsers(users, PageRequest{SortBy: SortByCreatedAt, SortOrder: SortAsc})
	return r.snapshots(users), nil
}

func (r *memoryRepository) FindByFilter(ctx context.Context, f Filter, page PageRequest) (*PageResult, error) {
	page, err := page.Normalize()
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched, err := r.match(f)
	if err != nil {
		return nil, err
	}
	sortUsers(matched, page)

	return &PageResult{
		Items:     r.snapshots(pageWindow(matched, page)),
		Total:     len(matched),
		PageIndex: page.PageIndex,
		PageSize:  page.PageSize,
	}, nil
}

// match evaluates f the way the SQL store does: each fan-out predicate joins
// the user's membership rows, so a user can appear once per matching row until
// the distinct step collapses them.
func (r *memoryRepository) match(f Filter) ([]*User, error) {
	rows := make([]*User, 0, len(r.ids))
	for _, id := range r.ids {
		rows = append(rows, r.users[id])
	}

	for _, p := range f.Predicates {
		next := rows[:0:0]
		for _, u := range rows {
			switch p.Kind {
			case KindUsernameContains:
				if strings.Contains(fold(u.Username), fold(p.Value)) {
					next = append(next, u)
				}
			case KindEmailEquals:
				if fold(u.Email) == fold(p.Value) {
					next = append(next, u)
				}
			case KindRoleNameEquals:
				for _, m := range r.memberships[u.ID] {
					if fold(m.Name) == fold(p.Value) {
						next = append(next, u)
					}
				}
			default:
				return nil, fmt.Errorf("unsupported predicate %s", p.Kind)
			}
		}
		rows = next
	}

	if f.RequiresDistinct {
		seen := make(map[string]struct{}, len(rows))
		rows = slices.DeleteFunc(rows, func(u *User) bool {
			if _, dup := seen[u.ID]; dup {
				return true
			}
			seen[u.ID] = struct{}{}
			return false
		})
	}
	return rows, nil
}

func (r *memoryRepository) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Username wins when the row collides on both, as with the Postgres indexes.
	for _, id := range r.ids {
		if fold(r.users[id].Username) == fold(u.Username) {
			return ErrDuplicateUsername
		}
	}
	for _, id := range r.ids {
		if fold(r.users[id].Email) == fold(u.Email) {
			return ErrDuplicateEmail
		}
	}

	u.ID = uuid.NewString()
	u.CreatedAt = r.now().UTC()

	stored := *u
	stored.Roles = nil
	r.users[u.ID] = &stored
	r.ids = append(r.ids, u.ID)
	return nil
}

func (r *memoryRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Status = status
	return nil
}

func (r *memoryRepository) AddRole(ctx context.Context, userID string, role RoleBrief) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return ErrNotFound
	}
	for _, m := range r.memberships[userID] {
		if m.ID == role.ID {
			return nil
		}
	}
	r.memberships[userID] = append(r.memberships[userID], role)
	return nil
}

func (r *memoryRepository) RemoveRole(ctx context.Context, userID string, roleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.memberships[userID] = slices.DeleteFunc(r.memberships[userID], func(m RoleBrief) bool {
		return m.ID == roleID
	})
	return nil
}

// snapshot copies u with its roles so callers never share state with the store.
// Callers must hold r.mu.
func (r *memoryRepository) snapshot(u *User) *User {
	c := *u
	c.Roles = []RoleBrief{}
	for _, m := range r.memberships[u.ID] {
		if !slices.ContainsFunc(c.Roles, func(x RoleBrief) bool { return x.ID == m.ID }) {
			c.Roles = append(c.Roles, m)
		}
	}
	slices.SortFunc(c.Roles, func(a, b RoleBrief) int { return strings.Compare(a.Name, b.Name) })
	return &c
}

func (r *memoryRepository) snapshots(users []*User) []*User {
	out := make([]*User, len(users))
	for i, u := range users {
		out[i] = r.snapshot(u)
	}
	return out
}
