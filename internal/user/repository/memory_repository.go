package repository

import (
	"context"
	"sync"

	"github.com/AlibekovAA/recipebook/backend/internal/common/clock"
	"github.com/AlibekovAA/recipebook/backend/internal/user/domain"
)

// MemoryRepository keeps users in process memory. Used for STORE_DRIVER=memory
// and in tests.
type MemoryRepository struct {
	mu         sync.RWMutex
	clock      clock.Clock
	nextID     domain.ID
	byID       map[domain.ID]domain.User
	byUsername map[string]domain.ID
}

func NewMemoryRepository(clk clock.Clock) *MemoryRepository {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &MemoryRepository{
		clock:      clk,
		byID:       make(map[domain.ID]domain.User),
		byUsername: make(map[string]domain.ID),
	}
}

func (r *MemoryRepository) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return domain.User{}, ErrUsernameAlreadyExists
	}

	r.nextID++
	now := r.clock.Now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	user.LastLogin = nil

	r.byID[user.ID] = user
	r.byUsername[user.Username] = user.ID
	return cloneUser(user), nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id domain.ID) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *MemoryRepository) Update(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[user.ID]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	if user.Username != existing.Username {
		if _, taken := r.byUsername[user.Username]; taken {
			return domain.User{}, ErrUsernameAlreadyExists
		}
		delete(r.byUsername, existing.Username)
		r.byUsername[user.Username] = user.ID
	}

	existing.Username = user.Username
	existing.PasswordHash = user.PasswordHash
	existing.UpdatedAt = r.clock.Now()
	r.byID[user.ID] = existing
	return cloneUser(existing), nil
}

func (r *MemoryRepository) UpdateLastLogin(_ context.Context, id domain.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil
	}
	now := r.clock.Now()
	user.LastLogin = &now
	r.byID[id] = user
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id domain.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	delete(r.byID, id)
	delete(r.byUsername, user.Username)
	return true, nil
}

func cloneUser(u domain.User) domain.User {
	if u.LastLogin != nil {
		t := *u.LastLogin
		u.LastLogin = &t
	}
	return u
}
