package identity

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

type memoryRepository struct {
	mu      sync.RWMutex
	users   map[string]User
	vendors map[string]Vendor
}

// NewMemoryRepository builds an in-memory identity store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User), vendors: make(map[string]Vendor)}
}

func (r *memoryRepository) CreateUser(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Phone == user.Phone {
			return ErrDuplicateContact
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryRepository) FindUser(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindUserByIdentifier(_ context.Context, identifier string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *User
	for _, u := range r.users {
		if u.Email != identifier && u.Phone != identifier && u.Username != identifier {
			continue
		}
		if found == nil || u.CreatedAt.Before(found.CreatedAt) {
			u := u
			found = &u
		}
	}
	if found == nil {
		return User{}, ErrUserNotFound
	}
	return *found, nil
}

func (r *memoryRepository) UpdateProfile(_ context.Context, id string, profile Profile) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	user.Income = decimal.NewNullDecimal(profile.Income)
	user.SavingsGoal = decimal.NewNullDecimal(profile.SavingsGoal)
	user.RiskTolerance = profile.RiskTolerance
	r.users[id] = user
	return user, nil
}

func (r *memoryRepository) ListUserIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids, nil
}

func (r *memoryRepository) CreateVendor(_ context.Context, vendor Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.vendors {
		if v.Email == vendor.Email || v.Phone == vendor.Phone {
			return ErrDuplicateContact
		}
	}
	r.vendors[vendor.ID] = vendor
	return nil
}

func (r *memoryRepository) FindVendor(_ context.Context, id string) (Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	vendor, ok := r.vendors[id]
	if !ok {
		return Vendor{}, ErrVendorNotFound
	}
	return vendor, nil
}

func (r *memoryRepository) FindVendorByIdentifier(_ context.Context, identifier string) (Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.vendors {
		if v.BusinessName == identifier || v.Email == identifier || v.Phone == identifier {
			return v, nil
		}
	}
	return Vendor{}, ErrVendorNotFound
}
